package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/negcache"
	"github.com/iconidentify/learnvid/internal/repository"
)

var startTime = time.Now()

// HealthHandler handles health check and stats endpoints.
type HealthHandler struct {
	store   repository.VideoRepository
	jobRepo repository.JobRepository
	cache   *negcache.Cache
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store repository.VideoRepository, jobRepo repository.JobRepository, cache *negcache.Cache) *HealthHandler {
	return &HealthHandler{
		store:   store,
		jobRepo: jobRepo,
		cache:   cache,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    string             `json:"status"`
	Timestamp string             `json:"timestamp"`
	Store     *domain.StoreStats `json:"store,omitempty"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// The store must answer before we take resolve traffic.
	stats, err := h.store.Stats(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "error",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     stats,
	})
}

// StatsResponse contains store, cache, queue and process statistics.
type StatsResponse struct {
	Store         *domain.StoreStats     `json:"store"`
	NegativeCache int                    `json:"negative_cache_size"`
	Queue         *repository.QueueStats `json:"queue"`
	Uptime        int64                  `json:"uptime_seconds"`
	UptimeHuman   string                 `json:"uptime_human"`
	MemAllocMB    int64                  `json:"mem_alloc_mb"`
	NumGoroutines int                    `json:"num_goroutines"`
}

// Stats handles GET /api/v1/stats
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	store, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read store stats")
		return
	}
	queue, err := h.jobRepo.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read queue stats")
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := time.Since(startTime)

	writeJSON(w, http.StatusOK, StatsResponse{
		Store:         store,
		NegativeCache: h.cache.Len(),
		Queue:         queue,
		Uptime:        int64(uptime.Seconds()),
		UptimeHuman:   formatUptime(uptime),
		MemAllocMB:    int64(m.Alloc / 1024 / 1024),
		NumGoroutines: runtime.NumGoroutine(),
	})
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
