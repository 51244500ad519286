package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/iconidentify/learnvid/internal/domain"
)

// InMemoryJobRepository implements JobRepository using in-memory storage.
// Admin jobs are short-lived; losing the queue on restart is acceptable.
type InMemoryJobRepository struct {
	mu    sync.RWMutex
	jobs  map[domain.JobID]*domain.Job
	queue []domain.JobID
}

// NewInMemoryJobRepository creates a new in-memory job repository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobs:  make(map[domain.JobID]*domain.Job),
		queue: make([]domain.JobID, 0),
	}
}

// Enqueue adds a job to the queue.
func (r *InMemoryJobRepository) Enqueue(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs[job.ID] = copyJob(job)
	r.queue = append(r.queue, job.ID)
	return nil
}

// Dequeue retrieves the next queued or retrying job.
func (r *InMemoryJobRepository) Dequeue(ctx context.Context) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, jobID := range r.queue {
		job, ok := r.jobs[jobID]
		if !ok {
			continue
		}
		if job.Status == domain.JobStatusQueued || job.Status == domain.JobStatusRetrying {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return copyJob(job), nil
		}
	}

	return nil, domain.ErrNoJobs
}

// Update modifies job state. Retrying jobs go back on the queue.
func (r *InMemoryJobRepository) Update(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	r.jobs[job.ID] = copyJob(job)

	if job.Status == domain.JobStatusRetrying {
		r.queue = append(r.queue, job.ID)
	}
	return nil
}

// Get retrieves a job by ID.
func (r *InMemoryJobRepository) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return copyJob(job), nil
}

// ListPending returns all queued/retrying jobs, oldest first.
func (r *InMemoryJobRepository) ListPending(ctx context.Context) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Job
	for _, job := range r.jobs {
		if job.Status == domain.JobStatusQueued || job.Status == domain.JobStatusRetrying {
			result = append(result, copyJob(job))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Stats returns queue statistics.
func (r *InMemoryJobRepository) Stats(ctx context.Context) (*QueueStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &QueueStats{}
	for _, job := range r.jobs {
		switch job.Status {
		case domain.JobStatusQueued:
			stats.Queued++
		case domain.JobStatusProcessing:
			stats.Processing++
		case domain.JobStatusCompleted:
			stats.Completed++
		case domain.JobStatusFailed:
			stats.Failed++
		case domain.JobStatusRetrying:
			stats.Retrying++
		}
	}
	return stats, nil
}

// copyJob returns a shallow copy so callers never share a stored job.
func copyJob(j *domain.Job) *domain.Job {
	cp := *j
	return &cp
}
