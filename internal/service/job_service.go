package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/repository"
)

// JobService queues admin maintenance jobs for the worker pool.
type JobService struct {
	jobRepo    repository.JobRepository
	maxRetries int
	logger     *slog.Logger
}

// NewJobService creates a job service.
func NewJobService(jobRepo repository.JobRepository, maxRetries int, logger *slog.Logger) *JobService {
	return &JobService{
		jobRepo:    jobRepo,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Submit queues a job of kind. matrix is only used by ingest jobs; an empty
// matrix means the configured default.
func (s *JobService) Submit(ctx context.Context, kind domain.JobKind, matrix []domain.MatrixCell) (*domain.Job, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownJobKind, kind)
	}

	job := domain.NewJob(domain.JobID(uuid.New().String()), kind, s.maxRetries)
	if kind == domain.JobKindIngest {
		job.Matrix = matrix
	}
	if err := s.jobRepo.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.logger.Info("job submitted", "job_id", job.ID, "kind", kind, "cells", len(matrix))
	return job, nil
}

// Get returns a job by ID.
func (s *JobService) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	return s.jobRepo.Get(ctx, id)
}

// Stats returns queue statistics.
func (s *JobService) Stats(ctx context.Context) (*repository.QueueStats, error) {
	return s.jobRepo.Stats(ctx)
}
