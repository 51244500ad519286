package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/learnvid/internal/api/handler"
	mw "github.com/iconidentify/learnvid/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	resolveHandler *handler.ResolveHandler,
	videoHandler *handler.VideoHandler,
	jobHandler *handler.JobHandler,
	negCacheHandler *handler.NegativeCacheHandler,
	healthHandler *handler.HealthHandler,
	apiKey string,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(mw.CORS)

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// API v1 (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(apiKey))

		r.Get("/stats", healthHandler.Stats)

		// Tutoring sessions
		r.Post("/resolve", resolveHandler.Resolve)

		// Curated store administration
		r.Get("/videos", videoHandler.Search)
		r.Post("/videos", videoHandler.Add)
		r.Get("/videos/{videoID}", videoHandler.Get)
		r.Delete("/videos/{videoID}", videoHandler.Delete)
		r.Post("/videos/{videoID}/validate", videoHandler.Validate)

		// Maintenance jobs
		r.Post("/jobs/{kind}", jobHandler.Submit)
		r.Get("/jobs/{jobID}", jobHandler.Get)

		r.Get("/negative-cache", negCacheHandler.List)
		r.Delete("/negative-cache", negCacheHandler.Clear)
	})

	return r
}
