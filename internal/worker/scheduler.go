package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/learnvid/internal/domain"
)

// JobSubmitter queues admin jobs.
type JobSubmitter interface {
	Submit(ctx context.Context, kind domain.JobKind, matrix []domain.MatrixCell) (*domain.Job, error)
}

// Scheduler periodically queues a job of a fixed kind for the pool.
type Scheduler struct {
	kind      domain.JobKind
	interval  time.Duration
	submitter JobSubmitter
	logger    *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. A non-positive interval disables it.
func NewScheduler(kind domain.JobKind, interval time.Duration, submitter JobSubmitter, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		kind:      kind,
		interval:  interval,
		submitter: submitter,
		logger:    logger.With("component", "scheduler", "kind", kind),
	}
}

// Start begins submitting jobs every interval until Stop.
func (s *Scheduler) Start() {
	if s.interval <= 0 {
		s.logger.Info("scheduler disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx)
	s.logger.Info("scheduler started", "interval", s.interval)
}

// Stop halts the scheduler and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := s.submitter.Submit(ctx, s.kind, nil)
			if err != nil {
				s.logger.Error("failed to submit scheduled job", "error", err)
				continue
			}
			s.logger.Info("scheduled job submitted", "job_id", job.ID)
		}
	}
}
