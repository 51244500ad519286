package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/learnvid/internal/classifier"
	"github.com/iconidentify/learnvid/internal/config"
	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/repository"
	"github.com/iconidentify/learnvid/internal/retry"
	"github.com/iconidentify/learnvid/pkg/youtube"
)

// BatchValidator validates stored rows in bulk.
type BatchValidator interface {
	ValidateBatch(ctx context.Context, ids []domain.VideoID) BatchResult
	Confirmed(r domain.ValidationResult) bool
}

// IngestionService populates and maintains the curated store offline.
type IngestionService struct {
	store      repository.VideoRepository
	searcher   VideoSearcher
	validator  BatchValidator
	classifier *classifier.Classifier
	cfg        config.IngestionConfig
	logger     *slog.Logger
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	store repository.VideoRepository,
	searcher VideoSearcher,
	validator BatchValidator,
	cls *classifier.Classifier,
	cfg config.IngestionConfig,
	logger *slog.Logger,
) *IngestionService {
	return &IngestionService{
		store:      store,
		searcher:   searcher,
		validator:  validator,
		classifier: cls,
		cfg:        cfg,
		logger:     logger.With("component", "ingestion"),
	}
}

// DefaultMatrix returns the configured subject x class band matrix.
func (s *IngestionService) DefaultMatrix() []domain.MatrixCell {
	bands := make([]domain.ClassBand, 0, len(s.cfg.ClassLevels))
	for _, raw := range s.cfg.ClassLevels {
		if b, ok := domain.ParseClassBand(raw); ok {
			bands = append(bands, b)
		}
	}
	subjects := make([]string, 0, len(s.cfg.Subjects))
	for _, subj := range s.cfg.Subjects {
		subjects = append(subjects, s.classifier.NormalizeSubject(subj))
	}
	return domain.BuildMatrix(subjects, bands)
}

// Run ingests candidates for every cell of matrix and then sweeps pending rows.
func (s *IngestionService) Run(ctx context.Context, matrix []domain.MatrixCell) (*domain.IngestionReport, error) {
	start := time.Now()
	report, err := s.Ingest(ctx, matrix)
	if err != nil {
		return nil, err
	}

	sweep, err := s.Sweep(ctx)
	if err != nil {
		return report, err
	}
	report.Validated = sweep.Validated
	report.Failed = sweep.Failed
	report.Inconclusive = sweep.Inconclusive
	report.Duration = time.Since(start)
	return report, nil
}

// Ingest searches every cell, deduplicates candidates by video ID across the
// whole run and inserts them as pending rows. A failed search skips its cell;
// a failed insert is retried once and then skipped.
func (s *IngestionService) Ingest(ctx context.Context, matrix []domain.MatrixCell) (*domain.IngestionReport, error) {
	if s.searcher == nil {
		return nil, domain.ErrNotConfigured
	}
	if len(matrix) == 0 {
		matrix = s.DefaultMatrix()
	}

	start := time.Now()
	report := &domain.IngestionReport{RunID: uuid.New().String(), Kind: domain.JobKindIngest}
	logger := s.logger.With("run_id", report.RunID)
	logger.Info("starting ingestion", "cells", len(matrix))

	seen := make(map[domain.VideoID]bool)
	var videos []*domain.Video

	for _, cell := range matrix {
		for _, q := range s.queriesFor(cell) {
			if report.Searches > 0 && s.cfg.SearchDelay > 0 {
				if err := sleep(ctx, s.cfg.SearchDelay); err != nil {
					return nil, err
				}
			}
			report.Searches++

			candidates, err := s.searcher.Search(ctx, youtube.SearchRequest{Query: q, MaxResults: s.cfg.MaxResults})
			if errors.Is(err, domain.ErrNotConfigured) {
				return nil, err
			}
			if err != nil {
				report.SearchFailures++
				logger.Warn("search failed, skipping",
					"subject", cell.Subject,
					"class_level", cell.ClassLevel,
					"query", q,
					"error", err,
				)
				continue
			}

			for _, c := range candidates {
				report.Candidates++
				if seen[c.VideoID] {
					report.Duplicates++
					continue
				}
				seen[c.VideoID] = true

				c.Subject = cell.Subject
				c.ClassLevel = cell.ClassLevel
				c.Topic = s.classifier.Classify(c.Title+" "+c.Description, cell.Subject)
				videos = append(videos, domain.NewVideo(c))
			}
		}
	}

	added, err := retry.DoWithCheck(ctx, retry.Once(s.cfg.InsertRetryDelay),
		func(ctx context.Context) (int, error) {
			return s.store.AddBatch(ctx, videos)
		},
		func(err error) bool { return ctx.Err() == nil },
	)
	if err != nil {
		logger.Error("batch insert failed after retry, skipping", "videos", len(videos), "error", err)
	}
	report.Added = added
	report.Duration = time.Since(start)

	logger.Info("ingestion complete",
		"searches", report.Searches,
		"search_failures", report.SearchFailures,
		"candidates", report.Candidates,
		"added", report.Added,
	)
	return report, nil
}

var queryTemplates = []string{
	"%s for class %s",
	"%s lessons class %s explained",
	"learn %s class %s",
}

// queriesFor returns the query phrasings for one cell: fixed templates first,
// then one query per subject topic, bounded by QueriesPerCell.
func (s *IngestionService) queriesFor(cell domain.MatrixCell) []string {
	subject := strings.ReplaceAll(cell.Subject, "_", " ")
	young := cell.ClassLevel.MaxGrade() > 0 && cell.ClassLevel.MaxGrade() <= 3

	var queries []string
	add := func(q string) bool {
		if young {
			q += " for kids"
		}
		queries = append(queries, q)
		return len(queries) < s.cfg.QueriesPerCell
	}

	for _, tmpl := range queryTemplates {
		if !add(fmt.Sprintf(tmpl, subject, cell.ClassLevel)) {
			return queries
		}
	}
	for _, topic := range s.classifier.Topics(cell.Subject) {
		q := fmt.Sprintf("%s %s class %s", strings.ReplaceAll(topic, "_", " "), subject, cell.ClassLevel)
		if !add(q) {
			return queries
		}
	}
	return queries
}

// Sweep validates every pending row and records the outcome. Rows whose
// validation was inconclusive stay pending for the next sweep.
func (s *IngestionService) Sweep(ctx context.Context) (*domain.IngestionReport, error) {
	start := time.Now()
	report := &domain.IngestionReport{RunID: uuid.New().String(), Kind: domain.JobKindSweep}

	pending, err := s.store.ListByStatus(ctx, domain.ValidationPending, 0)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	logger := s.logger.With("run_id", report.RunID)
	logger.Info("starting validation sweep", "pending", len(pending))

	batch := s.validator.ValidateBatch(ctx, videoIDs(pending))
	for _, r := range batch.Valid {
		if err := s.store.MarkValidation(ctx, r.VideoID, domain.ValidationValid, r.Details()); err != nil {
			logger.Warn("failed to mark video valid", "video_id", r.VideoID, "error", err)
			continue
		}
		report.Validated++
	}
	for _, r := range batch.Invalid {
		if !s.validator.Confirmed(r) {
			report.Inconclusive++
			continue
		}
		if err := s.store.MarkValidation(ctx, r.VideoID, domain.ValidationInvalid, r.Details()); err != nil {
			logger.Warn("failed to mark video invalid", "video_id", r.VideoID, "error", err)
			continue
		}
		report.Failed++
	}
	report.Inconclusive += batch.Skipped
	report.Duration = time.Since(start)

	logger.Info("validation sweep complete",
		"validated", report.Validated,
		"failed", report.Failed,
		"inconclusive", report.Inconclusive,
	)
	return report, ctx.Err()
}

// Revalidate re-checks every valid row. Confirmed failures downgrade the row
// to invalid; inconclusive results leave it valid.
func (s *IngestionService) Revalidate(ctx context.Context) (*domain.IngestionReport, error) {
	start := time.Now()
	report := &domain.IngestionReport{RunID: uuid.New().String(), Kind: domain.JobKindRevalidate}

	valid, err := s.store.ListByStatus(ctx, domain.ValidationValid, 0)
	if err != nil {
		return nil, fmt.Errorf("list valid: %w", err)
	}
	logger := s.logger.With("run_id", report.RunID)
	logger.Info("starting revalidation", "valid", len(valid))

	batch := s.validator.ValidateBatch(ctx, videoIDs(valid))
	for _, r := range batch.Valid {
		if err := s.store.MarkValidation(ctx, r.VideoID, domain.ValidationValid, r.Details()); err != nil {
			logger.Warn("failed to refresh video", "video_id", r.VideoID, "error", err)
			continue
		}
		report.Validated++
	}
	for _, r := range batch.Invalid {
		if !s.validator.Confirmed(r) {
			report.Inconclusive++
			continue
		}
		if err := s.store.MarkValidation(ctx, r.VideoID, domain.ValidationInvalid, r.Details()); err != nil {
			logger.Warn("failed to downgrade video", "video_id", r.VideoID, "error", err)
			continue
		}
		report.Downgraded++
	}
	report.Inconclusive += batch.Skipped
	report.Duration = time.Since(start)

	logger.Info("revalidation complete",
		"refreshed", report.Validated,
		"downgraded", report.Downgraded,
		"inconclusive", report.Inconclusive,
	)
	return report, ctx.Err()
}

// RunJob executes an admin job by kind.
func (s *IngestionService) RunJob(ctx context.Context, job *domain.Job) (*domain.IngestionReport, error) {
	var (
		report *domain.IngestionReport
		err    error
	)
	switch job.Kind {
	case domain.JobKindIngest:
		report, err = s.Run(ctx, job.Matrix)
	case domain.JobKindSweep:
		report, err = s.Sweep(ctx)
	case domain.JobKindRevalidate:
		report, err = s.Revalidate(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownJobKind, job.Kind)
	}
	if report != nil {
		report.RunID = job.ID.String()
	}
	return report, err
}

func videoIDs(videos []*domain.Video) []domain.VideoID {
	ids := make([]domain.VideoID, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.VideoID)
	}
	return ids
}
