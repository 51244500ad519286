package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/learnvid/internal/classifier"
	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/repository"
)

// Validator validates a video and reports whether a failure was confirmed.
type Validator interface {
	Validate(ctx context.Context, id domain.VideoID) domain.ValidationResult
	Confirmed(r domain.ValidationResult) bool
}

// VideoHandler handles curated store administration.
type VideoHandler struct {
	store      repository.VideoRepository
	validator  Validator
	classifier *classifier.Classifier
	logger     *slog.Logger
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(
	store repository.VideoRepository,
	validator Validator,
	cls *classifier.Classifier,
	logger *slog.Logger,
) *VideoHandler {
	return &VideoHandler{
		store:      store,
		validator:  validator,
		classifier: cls,
		logger:     logger,
	}
}

// AddRequest is the JSON request body for adding a candidate.
type AddRequest struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	ChannelID   string `json:"channel_id,omitempty"`
	ChannelName string `json:"channel_name,omitempty"`
	Description string `json:"description,omitempty"`
	Subject     string `json:"subject"`
	Topic       string `json:"topic,omitempty"`
	ClassLevel  string `json:"class_level,omitempty"`
}

// AddResponse is returned after adding a candidate.
type AddResponse struct {
	VideoID  string `json:"video_id"`
	Inserted bool   `json:"inserted"`
	Status   string `json:"status"`
	Topic    string `json:"topic"`
}

// ListResponse contains matching videos.
type ListResponse struct {
	Videos []VideoResponse `json:"videos"`
	Total  int             `json:"total"`
}

// ValidateResponse is returned after on-demand validation.
type ValidateResponse struct {
	Result domain.ValidationResult `json:"result"`
	Stored string                  `json:"stored_status,omitempty"`
}

// Search handles GET /api/v1/videos
// Without a status filter only valid rows are returned.
func (h *VideoHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if l := q.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var (
		videos []*domain.Video
		err    error
	)
	if s := q.Get("status"); s != "" && s != string(domain.ValidationValid) {
		status := domain.ValidationStatus(s)
		if status != domain.ValidationPending && status != domain.ValidationInvalid {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		videos, err = h.store.ListByStatus(r.Context(), status, limit)
	} else {
		criteria := domain.SearchCriteria{
			Subject:  h.classifier.NormalizeSubject(q.Get("subject")),
			Topic:    q.Get("topic"),
			FreeText: q.Get("q"),
			Limit:    limit,
		}
		if cl := q.Get("class_level"); cl != "" {
			band, ok := domain.ParseClassBand(cl)
			if !ok {
				writeError(w, http.StatusBadRequest, "invalid class_level")
				return
			}
			criteria.ClassLevel = band
		}
		videos, err = h.store.Search(r.Context(), criteria)
	}
	if err != nil {
		h.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search videos")
		return
	}

	resp := ListResponse{Videos: make([]VideoResponse, 0, len(videos)), Total: len(videos)}
	for _, v := range videos {
		resp.Videos = append(resp.Videos, toVideoResponse(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/videos/{videoID}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := domain.VideoID(chi.URLParam(r, "videoID"))

	v, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, "video not found")
			return
		}
		h.logger.Error("get failed", "video_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get video")
		return
	}
	writeJSON(w, http.StatusOK, toVideoResponse(v))
}

// Add handles POST /api/v1/videos
// The candidate is stored as pending; a missing topic is classified from the title.
func (h *VideoHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := domain.VideoID(req.VideoID)
	if !id.Valid() {
		writeError(w, http.StatusBadRequest, "invalid video ID")
		return
	}

	c := domain.Candidate{
		VideoID:     id,
		Title:       req.Title,
		ChannelID:   req.ChannelID,
		ChannelName: req.ChannelName,
		Description: req.Description,
		Subject:     h.classifier.NormalizeSubject(req.Subject),
		Topic:       req.Topic,
	}
	if req.ClassLevel != "" {
		band, ok := domain.ParseClassBand(req.ClassLevel)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid class_level")
			return
		}
		c.ClassLevel = band
	}
	if c.Topic == "" {
		c.Topic = h.classifier.Classify(c.Title+" "+c.Description, c.Subject)
	}

	v := domain.NewVideo(c)
	inserted, err := h.store.Add(r.Context(), v)
	if err != nil {
		h.logger.Error("add failed", "video_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add video")
		return
	}

	status := http.StatusCreated
	if !inserted {
		status = http.StatusOK
		if existing, err := h.store.Get(r.Context(), id); err == nil {
			v = existing
		}
	}
	writeJSON(w, status, AddResponse{
		VideoID:  id.String(),
		Inserted: inserted,
		Status:   string(v.ValidationStatus),
		Topic:    v.Topic,
	})
}

// Delete handles DELETE /api/v1/videos/{videoID}
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := domain.VideoID(chi.URLParam(r, "videoID"))

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, "video not found")
			return
		}
		h.logger.Error("delete failed", "video_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /api/v1/videos/{videoID}/validate
// A stored row is marked with the outcome unless the failure was not confirmed.
func (h *VideoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	id := domain.VideoID(chi.URLParam(r, "videoID"))
	if !id.Valid() {
		writeError(w, http.StatusBadRequest, "invalid video ID")
		return
	}

	result := h.validator.Validate(r.Context(), id)
	resp := ValidateResponse{Result: result}

	status, decisive := result.Status()
	if decisive && (result.IsValid() || h.validator.Confirmed(result)) {
		err := h.store.MarkValidation(r.Context(), id, status, result.Details())
		switch {
		case err == nil:
			resp.Stored = string(status)
		case errors.Is(err, domain.ErrVideoNotFound):
		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("stored status not updated", "video_id", id, "status", status, "error", err)
		default:
			h.logger.Error("mark validation failed", "video_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to record validation")
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
