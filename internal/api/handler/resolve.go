package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/service"
)

// Resolver picks a video for a learning query.
type Resolver interface {
	Resolve(ctx context.Context, query string, lc domain.LearnerContext) (*service.Resolution, error)
}

// ResolveHandler serves video resolution for tutoring sessions.
type ResolveHandler struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(resolver Resolver, logger *slog.Logger) *ResolveHandler {
	return &ResolveHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// ResolveRequest is the JSON request body for resolution.
type ResolveRequest struct {
	Query      string `json:"query"`
	Subject    string `json:"subject,omitempty"`
	ClassLevel string `json:"class_level,omitempty"`
	GradeBand  string `json:"grade_band,omitempty"`
	Language   string `json:"language,omitempty"`
}

// ResolveResponse is returned for a resolved video.
type ResolveResponse struct {
	Video   VideoResponse `json:"video"`
	Source  string        `json:"source"`
	Subject string        `json:"subject,omitempty"`
	Topic   string        `json:"topic"`
	Warning string        `json:"warning,omitempty"`
}

// Resolve handles POST /api/v1/resolve
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" && strings.TrimSpace(req.Subject) == "" {
		writeError(w, http.StatusBadRequest, "query or subject is required")
		return
	}

	lc := domain.LearnerContext{
		Subject:    req.Subject,
		ClassLevel: domain.ClassBand(req.ClassLevel),
		GradeBand:  req.GradeBand,
		Language:   domain.Language(strings.ToLower(req.Language)),
	}

	res, err := h.resolver.Resolve(r.Context(), req.Query, lc)
	if err != nil {
		if errors.Is(err, domain.ErrNoVideoFound) {
			writeError(w, http.StatusNotFound, "no playable video found")
			return
		}
		h.logger.Error("resolve failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve video")
		return
	}

	resp := ResolveResponse{
		Video:   toVideoResponse(res.Video),
		Source:  string(res.Source),
		Subject: res.Subject,
		Topic:   res.Topic,
	}
	if res.Validation != nil {
		resp.Warning = res.Validation.Warning
	}
	writeJSON(w, http.StatusOK, resp)
}
