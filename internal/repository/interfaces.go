package repository

import (
	"context"

	"github.com/iconidentify/learnvid/internal/domain"
)

// VideoRepository is the curated video store.
type VideoRepository interface {
	// Add inserts a pending row. It reports false when the id already exists.
	Add(ctx context.Context, video *domain.Video) (bool, error)

	// AddBatch inserts pending rows, skipping ids already present, and
	// returns the number of rows inserted.
	AddBatch(ctx context.Context, videos []*domain.Video) (int, error)

	// Get retrieves a row of any status by ID.
	Get(ctx context.Context, id domain.VideoID) (*domain.Video, error)

	// Search returns validated rows matching the criteria, oldest first.
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Video, error)

	// PickRandom returns a uniformly random validated row matching the criteria,
	// or ErrVideoNotFound when nothing matches.
	PickRandom(ctx context.Context, criteria domain.SearchCriteria) (*domain.Video, error)

	// ListByStatus returns rows in the given status, oldest first. limit <= 0 means all.
	ListByStatus(ctx context.Context, status domain.ValidationStatus, limit int) ([]*domain.Video, error)

	// MarkValidation moves a row to status and records how it was decided.
	// Disallowed transitions return ErrInvalidTransition.
	MarkValidation(ctx context.Context, id domain.VideoID, status domain.ValidationStatus, details domain.ValidationDetails) error

	// Delete removes a row.
	Delete(ctx context.Context, id domain.VideoID) error

	// Stats returns row counts per status.
	Stats(ctx context.Context) (*domain.StoreStats, error)
}

// JobRepository manages the admin job queue.
type JobRepository interface {
	// Enqueue adds a job to the queue.
	Enqueue(ctx context.Context, job *domain.Job) error

	// Dequeue retrieves the next pending job (FIFO).
	Dequeue(ctx context.Context) (*domain.Job, error)

	// Update modifies job state.
	Update(ctx context.Context, job *domain.Job) error

	// Get retrieves a job by ID.
	Get(ctx context.Context, id domain.JobID) (*domain.Job, error)

	// ListPending returns all pending/retrying jobs.
	ListPending(ctx context.Context) ([]*domain.Job, error)

	// Stats returns queue statistics.
	Stats(ctx context.Context) (*QueueStats, error)
}

// QueueStats contains job queue statistics.
type QueueStats struct {
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Retrying   int `json:"retrying"`
}
