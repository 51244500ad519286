package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/negcache"
	"github.com/iconidentify/learnvid/pkg/youtube"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache() *negcache.Cache {
	return negcache.New(nil, testLogger())
}

// mockMetadata implements MetadataChecker.
type mockMetadata struct {
	calls atomic.Int32
	fn    func(id domain.VideoID) (*domain.VideoMetadata, error)
	// ctxFn takes precedence over fn when set.
	ctxFn func(ctx context.Context, id domain.VideoID) (*domain.VideoMetadata, error)
}

func (m *mockMetadata) VideoStatus(ctx context.Context, id domain.VideoID) (*domain.VideoMetadata, error) {
	m.calls.Add(1)
	if m.ctxFn != nil {
		return m.ctxFn(ctx, id)
	}
	return m.fn(id)
}

func embeddable(title string) *domain.VideoMetadata {
	return &domain.VideoMetadata{Title: title, Embeddable: true, PrivacyStatus: "public", UploadStatus: "processed"}
}

// mockEmbed implements EmbedChecker.
type mockEmbed struct {
	calls atomic.Int32
	md    *domain.VideoMetadata
	err   error
}

func (m *mockEmbed) EmbedInfo(ctx context.Context, id domain.VideoID) (*domain.VideoMetadata, error) {
	m.calls.Add(1)
	return m.md, m.err
}

// mockProbe implements ExistenceProber.
type mockProbe struct {
	calls  atomic.Int32
	status int
	err    error
}

func (m *mockProbe) Probe(ctx context.Context, id domain.VideoID) (int, error) {
	m.calls.Add(1)
	return m.status, m.err
}

// mockSearcher implements VideoSearcher.
type mockSearcher struct {
	mu       sync.Mutex
	requests []youtube.SearchRequest
	results  []domain.Candidate
	err      error
	fn       func(req youtube.SearchRequest) ([]domain.Candidate, error)
}

func (m *mockSearcher) Search(ctx context.Context, req youtube.SearchRequest) ([]domain.Candidate, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(req)
	}
	return m.results, m.err
}

func (m *mockSearcher) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// mockValidator implements Validator with a fixed verdict per id.
// Unlisted ids are valid.
type mockValidator struct {
	calls   atomic.Int32
	invalid map[domain.VideoID]domain.ReasonCode
}

func (m *mockValidator) Validate(ctx context.Context, id domain.VideoID) domain.ValidationResult {
	m.calls.Add(1)
	if reason, ok := m.invalid[id]; ok {
		return domain.Invalid(id, domain.MethodMetadataAPI, reason)
	}
	return domain.Valid(id, domain.MethodMetadataAPI, embeddable("ok"))
}
