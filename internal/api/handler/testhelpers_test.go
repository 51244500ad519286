package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/repository"
	"github.com/iconidentify/learnvid/internal/service"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withURLParams attaches chi route parameters to a request.
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func body(s string) io.Reader {
	return strings.NewReader(s)
}

// failingVideoRepository fails Stats.
type failingVideoRepository struct {
	*repository.InMemoryVideoRepository
	statsErr error
}

func (r *failingVideoRepository) Stats(ctx context.Context) (*domain.StoreStats, error) {
	return nil, r.statsErr
}

// mockResolver implements Resolver.
type mockResolver struct {
	query string
	lc    domain.LearnerContext
	res   *service.Resolution
	err   error
}

func (m *mockResolver) Resolve(ctx context.Context, query string, lc domain.LearnerContext) (*service.Resolution, error) {
	m.query, m.lc = query, lc
	return m.res, m.err
}

// mockValidator implements Validator.
type mockValidator struct {
	result    domain.ValidationResult
	confirmed bool
	calls     int
}

func (m *mockValidator) Validate(ctx context.Context, id domain.VideoID) domain.ValidationResult {
	m.calls++
	r := m.result
	r.VideoID = id
	return r
}

func (m *mockValidator) Confirmed(r domain.ValidationResult) bool {
	return m.confirmed
}

// mockJobService implements JobService.
type mockJobService struct {
	jobs      map[domain.JobID]*domain.Job
	submitted []domain.MatrixCell
	submitErr error
}

func newMockJobService() *mockJobService {
	return &mockJobService{jobs: make(map[domain.JobID]*domain.Job)}
}

func (m *mockJobService) Submit(ctx context.Context, kind domain.JobKind, matrix []domain.MatrixCell) (*domain.Job, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	m.submitted = matrix
	job := domain.NewJob(domain.JobID("job-"+string(kind)), kind, 3)
	m.jobs[job.ID] = job
	return job, nil
}

func (m *mockJobService) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	if job, ok := m.jobs[id]; ok {
		return job, nil
	}
	return nil, domain.ErrJobNotFound
}
