package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/repository"
)

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// JobRunner executes one admin job and reports what it did.
type JobRunner interface {
	RunJob(ctx context.Context, job *domain.Job) (*domain.IngestionReport, error)
}

// Pool polls the job queue and runs ingest, sweep and revalidate jobs.
type Pool struct {
	workers      int
	pollInterval time.Duration
	jobRepo      repository.JobRepository
	runner       JobRunner
	logger       *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers      int
	PollInterval time.Duration
}

// NewPool creates a new worker pool.
func NewPool(
	cfg Config,
	jobRepo repository.JobRepository,
	runner JobRunner,
	logger *slog.Logger,
) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:      cfg.Workers,
		pollInterval: cfg.PollInterval,
		jobRepo:      jobRepo,
		runner:       runner,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "workers", p.workers, "poll_interval", p.pollInterval)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping worker pool")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Info("worker started")

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			logger.Info("worker stopping")
			return
		case <-ticker.C:
			p.drain(logger)
		}
	}
}

// drain runs queued jobs back to back until the queue is empty, a job fails,
// or the pool is stopping. A failed job waits for the next tick before retry.
func (p *Pool) drain(logger *slog.Logger) {
	for p.ctx.Err() == nil {
		job, err := p.jobRepo.Dequeue(p.ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNoJobs) {
				logger.Error("failed to dequeue job", "error", err)
			}
			return
		}
		if !p.process(logger.With("job_id", job.ID, "kind", job.Kind), job) {
			return
		}
	}
}

// process runs one job and records the outcome. It reports whether the job completed.
func (p *Pool) process(logger *slog.Logger, job *domain.Job) bool {
	logger.Info("processing job", "attempt", job.Attempts+1)

	job.MarkProcessing()
	if err := p.jobRepo.Update(p.ctx, job); err != nil {
		logger.Error("failed to update job status", "error", err)
		return false
	}

	start := time.Now()
	report, err := p.run(job)
	if err != nil {
		p.fail(logger, job, err)
		return false
	}

	job.MarkCompleted(report)
	if err := p.jobRepo.Update(p.ctx, job); err != nil {
		logger.Error("failed to mark job completed", "error", err)
		return false
	}

	attrs := []any{"duration", time.Since(start)}
	if report != nil {
		attrs = append(attrs,
			"added", report.Added,
			"validated", report.Validated,
			"failed", report.Failed,
			"inconclusive", report.Inconclusive,
			"downgraded", report.Downgraded,
		)
	}
	logger.Info("job completed", attrs...)
	return true
}

// run calls the runner, turning a panic into an error so one bad job
// cannot take the worker down.
func (p *Pool) run(job *domain.Job) (report *domain.IngestionReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return p.runner.RunJob(p.ctx, job)
}

// retryable reports whether a failed job may run again.
func retryable(err error) bool {
	return !errors.Is(err, domain.ErrUnknownJobKind) && !errors.Is(err, domain.ErrNotConfigured)
}

func (p *Pool) fail(logger *slog.Logger, job *domain.Job, err error) {
	job.MarkFailed(err.Error())

	if job.CanRetry() && retryable(err) {
		logger.Warn("job failed, will retry",
			"error", err,
			"attempt", job.Attempts,
			"max_retries", job.MaxRetries,
		)
	} else {
		job.Status = domain.JobStatusFailed
		logger.Error("job failed permanently",
			"error", err,
			"attempts", job.Attempts,
		)
	}

	if updateErr := p.jobRepo.Update(p.ctx, job); updateErr != nil {
		logger.Error("failed to update job after failure", "error", updateErr)
	}
}
