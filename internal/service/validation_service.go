package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iconidentify/learnvid/internal/config"
	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/negcache"
)

// ValidationService decides whether a video is playable and embeddable.
// Checks run in descending order of reliability and stop at the first
// decisive answer. Confirmed failures go to the negative cache; I/O errors
// never do.
type ValidationService struct {
	cache    *negcache.Cache
	metadata MetadataChecker
	embed    EmbedChecker
	probe    ExistenceProber
	cfg      config.ValidationConfig
	logger   *slog.Logger

	flights singleflight.Group
}

// NewValidationService creates a validator. Any checker may be nil, in which
// case its step is inconclusive.
func NewValidationService(
	cache *negcache.Cache,
	metadata MetadataChecker,
	embed EmbedChecker,
	probe ExistenceProber,
	cfg config.ValidationConfig,
	logger *slog.Logger,
) *ValidationService {
	return &ValidationService{
		cache:    cache,
		metadata: metadata,
		embed:    embed,
		probe:    probe,
		cfg:      cfg,
		logger:   logger.With("component", "validator"),
	}
}

// Validate runs the validation chain for id. It always returns a Valid or
// Invalid result.
func (s *ValidationService) Validate(ctx context.Context, id domain.VideoID) domain.ValidationResult {
	if !id.Valid() {
		r := domain.Invalid(id, "", domain.ReasonValidationError)
		r.Detail = domain.ErrInvalidVideoID.Error()
		return r
	}
	if s.cache.Contains(id) {
		return domain.Invalid(id, domain.MethodNegativeCache, domain.ReasonCachedFailure)
	}

	// Concurrent callers for the same id share one set of external calls. The
	// shared run is detached from any single caller; each step carries its
	// own timeout.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(id.String(), func() (any, error) {
		if s.cache.Contains(id) {
			return domain.Invalid(id, domain.MethodNegativeCache, domain.ReasonCachedFailure), nil
		}
		return s.validate(flightCtx, id), nil
	})

	select {
	case res := <-ch:
		return res.Val.(domain.ValidationResult)
	case <-ctx.Done():
		r := domain.Invalid(id, "", domain.ReasonAllMethodsFailed)
		r.Detail = ctx.Err().Error()
		return r
	}
}

func (s *ValidationService) validate(ctx context.Context, id domain.VideoID) domain.ValidationResult {
	logger := s.logger.With("video_id", id)

	steps := []func(context.Context, domain.VideoID) domain.ValidationResult{
		s.checkMetadata,
		s.checkEmbed,
		s.checkProbe,
	}

	var details []string
	for _, step := range steps {
		r := step(ctx, id)
		if r.IsDecisive() {
			if r.Verdict == domain.VerdictInvalid {
				s.cache.Add(ctx, id, r.Reason)
				logger.Info("video failed validation", "method", r.Method, "reason", r.Reason)
			} else {
				logger.Debug("video validated", "method", r.Method, "warning", r.Warning)
			}
			return r
		}
		logger.Debug("validation step inconclusive", "method", r.Method, "detail", r.Detail)
		details = append(details, string(r.Method)+": "+r.Detail)
	}

	r := domain.Invalid(id, "", domain.ReasonAllMethodsFailed)
	r.Detail = strings.Join(details, "; ")
	if s.cfg.CacheExhaustedFailures && ctx.Err() == nil {
		s.cache.Add(ctx, id, r.Reason)
	}
	logger.Warn("all validation methods inconclusive", "detail", r.Detail)
	return r
}

func (s *ValidationService) checkMetadata(ctx context.Context, id domain.VideoID) domain.ValidationResult {
	const method = domain.MethodMetadataAPI
	if s.metadata == nil {
		return domain.Inconclusive(id, method, "not configured")
	}

	md, err := s.metadata.VideoStatus(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		return domain.Inconclusive(id, method, "not configured")
	case errors.Is(err, domain.ErrVideoNotFound):
		return domain.Invalid(id, method, domain.ReasonNotFound)
	case err != nil:
		return domain.Inconclusive(id, method, err.Error())
	case md == nil:
		return domain.Inconclusive(id, method, "empty response")
	}

	switch {
	case md.PrivacyStatus == "private":
		return domain.Invalid(id, method, domain.ReasonPrivate)
	case md.UploadStatus == "rejected" || md.UploadStatus == "deleted" || md.UploadStatus == "failed":
		return domain.Invalid(id, method, domain.ReasonRejected)
	case !md.Embeddable:
		return domain.Invalid(id, method, domain.ReasonNotEmbeddable)
	}
	return domain.Valid(id, method, md)
}

func (s *ValidationService) checkEmbed(ctx context.Context, id domain.VideoID) domain.ValidationResult {
	const method = domain.MethodEmbedInfo
	if s.embed == nil {
		return domain.Inconclusive(id, method, "not configured")
	}

	md, err := s.embed.EmbedInfo(ctx, id)
	switch {
	case errors.Is(err, domain.ErrEmbedForbidden):
		return domain.Invalid(id, method, domain.ReasonEmbedForbidden)
	case err != nil:
		return domain.Inconclusive(id, method, err.Error())
	case md == nil:
		return domain.Inconclusive(id, method, "empty response")
	}
	return domain.Valid(id, method, md)
}

func (s *ValidationService) checkProbe(ctx context.Context, id domain.VideoID) domain.ValidationResult {
	const method = domain.MethodExistenceProbe
	if s.probe == nil {
		return domain.Inconclusive(id, method, "not configured")
	}

	status, err := s.probe.Probe(ctx, id)
	switch {
	case err != nil:
		return domain.Inconclusive(id, method, err.Error())
	case status >= 200 && status < 300:
		r := domain.Valid(id, method, nil)
		r.Warning = domain.WarningEmbeddabilityUnconfirmed
		return r
	case status == http.StatusTooManyRequests || status >= 500:
		return domain.Inconclusive(id, method, fmt.Sprintf("http %d", status))
	}
	r := domain.Invalid(id, method, domain.ReasonProbeFailed)
	r.Detail = fmt.Sprintf("http %d", status)
	return r
}

// Confirmed reports whether r is a failure the platform confirmed, as opposed
// to a validation that could not reach a decision.
func (s *ValidationService) Confirmed(r domain.ValidationResult) bool {
	return r.Verdict == domain.VerdictInvalid && s.cache.Contains(r.VideoID)
}

// BatchResult partitions the outcomes of ValidateBatch.
type BatchResult struct {
	Valid   []domain.ValidationResult
	Invalid []domain.ValidationResult
	// Skipped counts ids not attempted because ctx was cancelled.
	Skipped int
}

// ValidateBatch validates ids one at a time with a courtesy delay between
// calls. A panic while validating one id is recorded as an invalid result
// and does not abort the batch.
func (s *ValidationService) ValidateBatch(ctx context.Context, ids []domain.VideoID) BatchResult {
	var out BatchResult
	for i, id := range ids {
		if i > 0 && s.cfg.BatchDelay > 0 {
			if err := sleep(ctx, s.cfg.BatchDelay); err != nil {
				out.Skipped = len(ids) - i
				return out
			}
		}
		if ctx.Err() != nil {
			out.Skipped = len(ids) - i
			return out
		}

		r := s.validateSafely(ctx, id)
		if r.IsValid() {
			out.Valid = append(out.Valid, r)
		} else {
			out.Invalid = append(out.Invalid, r)
		}
	}
	return out
}

func (s *ValidationService) validateSafely(ctx context.Context, id domain.VideoID) (result domain.ValidationResult) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("validation panicked", "video_id", id, "panic", rec)
			result = domain.Invalid(id, "", domain.ReasonValidationError)
			result.Detail, _, _ = strings.Cut(fmt.Sprint(rec), "\n")
		}
	}()
	return s.Validate(ctx, id)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
