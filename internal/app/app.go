// Package app wires configuration into the stores, platform client and
// services shared by the server and the ingestion CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iconidentify/learnvid/internal/catalog"
	"github.com/iconidentify/learnvid/internal/classifier"
	"github.com/iconidentify/learnvid/internal/config"
	"github.com/iconidentify/learnvid/internal/negcache"
	"github.com/iconidentify/learnvid/internal/repository"
	"github.com/iconidentify/learnvid/internal/service"
	"github.com/iconidentify/learnvid/pkg/youtube"
)

// App holds the wired dependencies.
type App struct {
	Store      repository.VideoRepository
	JobRepo    repository.JobRepository
	Cache      *negcache.Cache
	Classifier *classifier.Classifier
	YouTube    *youtube.Client

	Validation *service.ValidationService
	Resolver   *service.ResolverService
	Ingestion  *service.IngestionService
	Jobs       *service.JobService

	closers []func() error
}

// New builds every dependency described by cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		JobRepo:    repository.NewInMemoryJobRepository(),
		Classifier: classifier.NewDefault(),
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		a.Store = repository.NewInMemoryVideoRepository()
	default:
		repo, err := repository.OpenSQLVideoRepository(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("open video store: %w", err)
		}
		a.Store = repo
		a.closers = append(a.closers, repo.Close)
	}
	logger.Info("video store ready", "driver", cfg.Storage.Driver)

	if cfg.Storage.SeedCatalog {
		if _, err := catalog.Seed(ctx, a.Store, logger); err != nil {
			a.Close()
			return nil, err
		}
	}

	var cacheStore negcache.Store
	if cfg.NegativeCache.RedisAddr != "" {
		rs, err := negcache.NewRedisStore(ctx, cfg.NegativeCache)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect negative cache store: %w", err)
		}
		cacheStore = rs
		a.closers = append(a.closers, rs.Close)
	}
	a.Cache = negcache.New(cacheStore, logger.With("component", "negcache"))
	if n, err := a.Cache.Warm(ctx); err != nil {
		logger.Warn("negative cache warm failed", "error", err)
	} else if n > 0 {
		logger.Info("negative cache warmed", "entries", n)
	}

	client, err := youtube.NewClient(ctx, cfg.YouTube)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.YouTube = client
	if !client.Configured() {
		logger.Warn("YOUTUBE_API_KEY not set, live search and metadata checks disabled")
	}

	a.Validation = service.NewValidationService(a.Cache, client, client, client, cfg.Validation, logger)
	a.Resolver = service.NewResolverService(a.Store, a.Validation, client, a.Cache, a.Classifier,
		cfg.Resolver, cfg.YouTube.MaxResults, logger)
	a.Ingestion = service.NewIngestionService(a.Store, client, a.Validation, a.Classifier, cfg.Ingestion, logger)
	a.Jobs = service.NewJobService(a.JobRepo, cfg.Worker.MaxRetries, logger)

	return a, nil
}

// Close releases the store and cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
