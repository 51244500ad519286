package handler

import (
	"log/slog"
	"net/http"

	"github.com/iconidentify/learnvid/internal/negcache"
)

// NegativeCacheHandler exposes the known-bad video set to admins.
type NegativeCacheHandler struct {
	cache  *negcache.Cache
	logger *slog.Logger
}

// NewNegativeCacheHandler creates a new negative cache handler.
func NewNegativeCacheHandler(cache *negcache.Cache, logger *slog.Logger) *NegativeCacheHandler {
	return &NegativeCacheHandler{
		cache:  cache,
		logger: logger,
	}
}

// NegativeCacheResponse lists cached entries, oldest first.
type NegativeCacheResponse struct {
	Entries []negcache.Entry `json:"entries"`
	Total   int              `json:"total"`
}

// List handles GET /api/v1/negative-cache
func (h *NegativeCacheHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.cache.Entries()
	if entries == nil {
		entries = []negcache.Entry{}
	}
	writeJSON(w, http.StatusOK, NegativeCacheResponse{Entries: entries, Total: len(entries)})
}

// Clear handles DELETE /api/v1/negative-cache
func (h *NegativeCacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n := h.cache.Len()
	if err := h.cache.Clear(r.Context()); err != nil {
		h.logger.Error("clear negative cache failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear negative cache")
		return
	}
	h.logger.Info("negative cache cleared", "entries", n)
	w.WriteHeader(http.StatusNoContent)
}
