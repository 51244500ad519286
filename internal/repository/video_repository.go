package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/iconidentify/learnvid/internal/domain"
)

// InMemoryVideoRepository implements VideoRepository in process memory.
// Rows are copied on the way in and out so callers never share state with the store.
type InMemoryVideoRepository struct {
	mu     sync.RWMutex
	videos map[domain.VideoID]*domain.Video
	order  []domain.VideoID
}

// NewInMemoryVideoRepository creates an empty in-memory video repository.
func NewInMemoryVideoRepository() *InMemoryVideoRepository {
	return &InMemoryVideoRepository{
		videos: make(map[domain.VideoID]*domain.Video),
	}
}

// Add inserts a pending row.
func (r *InMemoryVideoRepository) Add(ctx context.Context, video *domain.Video) (bool, error) {
	if video == nil || !video.VideoID.Valid() {
		return false, domain.ErrInvalidVideoID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(video), nil
}

// AddBatch inserts pending rows, skipping duplicates and malformed ids.
func (r *InMemoryVideoRepository) AddBatch(ctx context.Context, videos []*domain.Video) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, v := range videos {
		if v == nil || !v.VideoID.Valid() {
			continue
		}
		if r.insertLocked(v) {
			inserted++
		}
	}
	return inserted, nil
}

func (r *InMemoryVideoRepository) insertLocked(video *domain.Video) bool {
	if _, exists := r.videos[video.VideoID]; exists {
		return false
	}
	row := *video
	row.Candidate = row.Candidate.Normalized()
	row.ValidationStatus = domain.ValidationPending
	row.ValidationMethod = ""
	row.ValidationDetails = ""
	row.ValidatedAt = nil
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	r.videos[row.VideoID] = &row
	r.order = append(r.order, row.VideoID)
	return true
}

// Get retrieves a row by ID.
func (r *InMemoryVideoRepository) Get(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.videos[id]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	return copyVideo(v), nil
}

// Search returns validated rows matching the criteria in insertion order.
func (r *InMemoryVideoRepository) Search(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Video
	for _, id := range r.order {
		v := r.videos[id]
		if v.ValidationStatus != domain.ValidationValid || !criteria.Matches(v) {
			continue
		}
		result = append(result, copyVideo(v))
		if criteria.Limit > 0 && len(result) >= criteria.Limit {
			break
		}
	}
	return result, nil
}

// PickRandom returns a uniformly random validated row matching the criteria.
func (r *InMemoryVideoRepository) PickRandom(ctx context.Context, criteria domain.SearchCriteria) (*domain.Video, error) {
	criteria.Limit = 0
	matches, err := r.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return pickRandom(matches)
}

// ListByStatus returns rows in status, oldest first.
func (r *InMemoryVideoRepository) ListByStatus(ctx context.Context, status domain.ValidationStatus, limit int) ([]*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Video
	for _, id := range r.order {
		v := r.videos[id]
		if v.ValidationStatus != status {
			continue
		}
		result = append(result, copyVideo(v))
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// MarkValidation transitions a row's status.
func (r *InMemoryVideoRepository) MarkValidation(ctx context.Context, id domain.VideoID, status domain.ValidationStatus, details domain.ValidationDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok {
		return domain.ErrVideoNotFound
	}
	if !v.ValidationStatus.CanTransition(status) {
		return domain.NewVideoError(id, "mark "+string(status), domain.ErrInvalidTransition)
	}

	at := details.At
	if at.IsZero() {
		at = time.Now()
	}
	v.ValidationStatus = status
	v.ValidationMethod = details.Method
	v.ValidationDetails = details.String()
	v.ValidatedAt = &at
	return nil
}

// Delete removes a row.
func (r *InMemoryVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.videos[id]; !ok {
		return domain.ErrVideoNotFound
	}
	delete(r.videos, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Stats returns row counts per status.
func (r *InMemoryVideoRepository) Stats(ctx context.Context) (*domain.StoreStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &domain.StoreStats{Total: len(r.videos)}
	for _, v := range r.videos {
		switch v.ValidationStatus {
		case domain.ValidationValid:
			stats.Validated++
		case domain.ValidationPending:
			stats.Pending++
		case domain.ValidationInvalid:
			stats.Invalid++
		}
	}
	stats.ComputeRate()
	return stats, nil
}

func copyVideo(v *domain.Video) *domain.Video {
	cp := *v
	if v.ValidatedAt != nil {
		at := *v.ValidatedAt
		cp.ValidatedAt = &at
	}
	return &cp
}

func pickRandom(matches []*domain.Video) (*domain.Video, error) {
	if len(matches) == 0 {
		return nil, domain.ErrVideoNotFound
	}
	return matches[rand.IntN(len(matches))], nil
}
