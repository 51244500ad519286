package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconidentify/learnvid/internal/api"
	"github.com/iconidentify/learnvid/internal/api/handler"
	"github.com/iconidentify/learnvid/internal/app"
	"github.com/iconidentify/learnvid/internal/config"
	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/worker"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("learnvid %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting learnvid",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		logger.Error("invalid server config", "error", err)
		os.Exit(1)
	}

	// Initialize dependencies and services
	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	deps, err := app.New(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	// Initialize handlers
	resolveHandler := handler.NewResolveHandler(deps.Resolver, logger)
	videoHandler := handler.NewVideoHandler(deps.Store, deps.Validation, deps.Classifier, logger)
	jobHandler := handler.NewJobHandler(deps.Jobs, logger)
	negCacheHandler := handler.NewNegativeCacheHandler(deps.Cache, logger)
	healthHandler := handler.NewHealthHandler(deps.Store, deps.JobRepo, deps.Cache)

	// Setup router
	router := api.NewRouter(resolveHandler, videoHandler, jobHandler, negCacheHandler, healthHandler, cfg.Server.APIKey)

	// Initialize worker pool
	pool := worker.NewPool(
		worker.Config{
			Workers:      cfg.Worker.Count,
			PollInterval: cfg.Worker.PollInterval,
		},
		deps.JobRepo,
		deps.Ingestion,
		logger,
	)
	pool.Start()

	// Periodic revalidation of the curated store
	scheduler := worker.NewScheduler(domain.JobKindRevalidate, cfg.Worker.RevalidateInterval, deps.Jobs, logger)
	scheduler.Start()

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	scheduler.Stop()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop workers (allow in-flight jobs to complete)
	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
