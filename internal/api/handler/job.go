package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/learnvid/internal/domain"
)

// JobService queues and looks up admin jobs.
type JobService interface {
	Submit(ctx context.Context, kind domain.JobKind, matrix []domain.MatrixCell) (*domain.Job, error)
	Get(ctx context.Context, id domain.JobID) (*domain.Job, error)
}

// JobHandler handles admin job requests.
type JobHandler struct {
	jobs   JobService
	logger *slog.Logger
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobs JobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		logger: logger,
	}
}

// IngestRequest is the optional body of an ingest job. An empty matrix means
// the configured subjects and class levels.
type IngestRequest struct {
	Matrix []domain.MatrixCell `json:"matrix,omitempty"`
}

// JobResponse represents a job in API responses.
type JobResponse struct {
	JobID     string                  `json:"job_id"`
	Kind      string                  `json:"kind"`
	Status    string                  `json:"status"`
	Attempts  int                     `json:"attempts"`
	LastError string                  `json:"last_error,omitempty"`
	Report    *domain.IngestionReport `json:"report,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func toJobResponse(j *domain.Job) JobResponse {
	return JobResponse{
		JobID:     j.ID.String(),
		Kind:      string(j.Kind),
		Status:    string(j.Status),
		Attempts:  j.Attempts,
		LastError: j.LastError,
		Report:    j.Report,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// Submit handles POST /api/v1/jobs/{kind}
func (h *JobHandler) Submit(w http.ResponseWriter, r *http.Request) {
	kind := domain.JobKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		writeError(w, http.StatusNotFound, "unknown job kind")
		return
	}

	var req IngestRequest
	if kind == domain.JobKindIngest && r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		for i, cell := range req.Matrix {
			band, ok := domain.ParseClassBand(string(cell.ClassLevel))
			if cell.Subject == "" || !ok {
				writeError(w, http.StatusBadRequest, "invalid matrix cell")
				return
			}
			req.Matrix[i] = domain.MatrixCell{Subject: domain.NormalizeTag(cell.Subject), ClassLevel: band}
		}
	}

	job, err := h.jobs.Submit(r.Context(), kind, req.Matrix)
	if err != nil {
		h.logger.Error("submit job failed", "kind", kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit job")
		return
	}
	writeJSON(w, http.StatusAccepted, toJobResponse(job))
}

// Get handles GET /api/v1/jobs/{jobID}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := domain.JobID(chi.URLParam(r, "jobID"))

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("get job failed", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(job))
}
