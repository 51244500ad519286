package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/iconidentify/learnvid/internal/domain"
)

func TestInMemoryJobRepository_Dequeue(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	_, err := repo.Dequeue(ctx)
	if err != domain.ErrNoJobs {
		t.Errorf("expected ErrNoJobs, got %v", err)
	}

	repo.Enqueue(ctx, domain.NewJob("job-1", domain.JobKindIngest, 3))
	repo.Enqueue(ctx, domain.NewJob("job-2", domain.JobKindSweep, 3))

	dequeued, err := repo.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if dequeued.ID != "job-1" || dequeued.Kind != domain.JobKindIngest {
		t.Errorf("expected job-1 ingest, got %s %s", dequeued.ID, dequeued.Kind)
	}

	dequeued, err = repo.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if dequeued.ID != "job-2" {
		t.Errorf("expected job-2, got %s", dequeued.ID)
	}

	if _, err = repo.Dequeue(ctx); err != domain.ErrNoJobs {
		t.Errorf("expected ErrNoJobs, got %v", err)
	}
}

func TestInMemoryJobRepository_Dequeue_SkipsNonPending(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	job1 := domain.NewJob("job-1", domain.JobKindSweep, 3)
	job1.Status = domain.JobStatusCompleted
	repo.Enqueue(ctx, job1)
	repo.Enqueue(ctx, domain.NewJob("job-2", domain.JobKindSweep, 3))

	dequeued, err := repo.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if dequeued.ID != "job-2" {
		t.Errorf("expected job-2, got %s", dequeued.ID)
	}
}

func TestInMemoryJobRepository_Update(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	job := domain.NewJob("job-1", domain.JobKindRevalidate, 3)
	repo.Enqueue(ctx, job)

	job.MarkProcessing()
	if err := repo.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, _ := repo.Get(ctx, "job-1")
	if retrieved.Status != domain.JobStatusProcessing {
		t.Errorf("Status = %v, want %v", retrieved.Status, domain.JobStatusProcessing)
	}

	if err := repo.Update(ctx, domain.NewJob("nonexistent", domain.JobKindSweep, 3)); err != domain.ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestInMemoryJobRepository_Update_RequeueRetrying(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	job := domain.NewJob("job-1", domain.JobKindIngest, 3)
	repo.Enqueue(ctx, job)
	repo.Dequeue(ctx)

	job.MarkFailed("search quota exhausted")
	if job.Status != domain.JobStatusRetrying {
		t.Fatalf("Status = %v, want retrying", job.Status)
	}
	repo.Update(ctx, job)

	dequeued, err := repo.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if dequeued.ID != "job-1" {
		t.Errorf("expected job-1, got %s", dequeued.ID)
	}
}

func TestInMemoryJobRepository_Get_NotFound(t *testing.T) {
	repo := NewInMemoryJobRepository()

	_, err := repo.Get(context.Background(), "nonexistent")
	if err != domain.ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestInMemoryJobRepository_ListPending(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	statuses := []domain.JobStatus{
		domain.JobStatusQueued,
		domain.JobStatusProcessing,
		domain.JobStatusRetrying,
		domain.JobStatusCompleted,
	}
	for i, status := range statuses {
		job := domain.NewJob(domain.JobID(fmt.Sprintf("job-%d", i)), domain.JobKindSweep, 3)
		job.Status = status
		repo.Enqueue(ctx, job)
	}

	pending, err := repo.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("expected 2 pending jobs, got %d", len(pending))
	}
}

func TestInMemoryJobRepository_Stats(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	statuses := []domain.JobStatus{
		domain.JobStatusQueued,
		domain.JobStatusQueued,
		domain.JobStatusProcessing,
		domain.JobStatusCompleted,
		domain.JobStatusCompleted,
		domain.JobStatusCompleted,
		domain.JobStatusFailed,
		domain.JobStatusRetrying,
	}
	for i, status := range statuses {
		job := domain.NewJob(domain.JobID(fmt.Sprintf("job-%d", i)), domain.JobKindIngest, 3)
		job.Status = status
		repo.Enqueue(ctx, job)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := QueueStats{Queued: 2, Processing: 1, Completed: 3, Failed: 1, Retrying: 1}
	if *stats != want {
		t.Errorf("Stats() = %+v, want %+v", *stats, want)
	}
}

func TestInMemoryJobRepository_Concurrency(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			repo.Enqueue(ctx, domain.NewJob(domain.JobID(fmt.Sprintf("job-%d", id)), domain.JobKindSweep, 3))
			repo.Stats(ctx)
			repo.ListPending(ctx)
		}(i)
	}
	wg.Wait()

	stats, _ := repo.Stats(ctx)
	if stats.Queued != 10 {
		t.Errorf("Queued = %d, want 10", stats.Queued)
	}
}

func TestInMemoryJobRepository_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryJobRepository()
	ctx := context.Background()

	job := domain.NewJob("job-1", domain.JobKindSweep, 3)
	repo.Enqueue(ctx, job)
	job.MarkProcessing()

	got, _ := repo.Get(ctx, "job-1")
	if got.Status != domain.JobStatusQueued {
		t.Errorf("Status = %v, want queued until Update", got.Status)
	}

	got.MarkFailed("boom")
	again, _ := repo.Get(ctx, "job-1")
	if again.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", again.Attempts)
	}
}
