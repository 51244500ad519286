package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iconidentify/learnvid/internal/classifier"
	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/repository"
)

func setupVideoHandler(t *testing.T, validator *mockValidator) (*VideoHandler, *repository.InMemoryVideoRepository) {
	t.Helper()
	store := repository.NewInMemoryVideoRepository()
	ctx := context.Background()
	for _, c := range []domain.Candidate{
		{VideoID: "ncORPosDrjI", Title: "The Water Cycle", Subject: "science", Topic: "water_cycle", ClassLevel: "4-6"},
		{VideoID: "n0FZhQ_GkKw", Title: "Introduction to Fractions", Subject: "mathematics", Topic: "fractions", ClassLevel: "4-6"},
	} {
		store.Add(ctx, domain.NewVideo(c))
		store.MarkValidation(ctx, c.VideoID, domain.ValidationValid, domain.ValidationDetails{Method: domain.MethodSeed})
	}
	store.Add(ctx, domain.NewVideo(domain.Candidate{VideoID: "pendAAAAAAA", Subject: "science"}))

	if validator == nil {
		validator = &mockValidator{}
	}
	return NewVideoHandler(store, validator, classifier.NewDefault(), testLogger()), store
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) ListResponse {
	t.Helper()
	var resp ListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestVideoHandler_Search(t *testing.T) {
	handler, _ := setupVideoHandler(t, nil)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantTotal int
	}{
		{name: "all valid", query: "", wantCode: http.StatusOK, wantTotal: 2},
		{name: "subject alias", query: "?subject=maths", wantCode: http.StatusOK, wantTotal: 1},
		{name: "class grade", query: "?class_level=5", wantCode: http.StatusOK, wantTotal: 2},
		{name: "free text", query: "?q=water", wantCode: http.StatusOK, wantTotal: 1},
		{name: "pending", query: "?status=pending", wantCode: http.StatusOK, wantTotal: 1},
		{name: "bad status", query: "?status=archived", wantCode: http.StatusBadRequest},
		{name: "bad class", query: "?class_level=kindergarten", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Search(w, httptest.NewRequest(http.MethodGet, "/api/v1/videos"+tt.query, nil))

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if resp := decodeList(t, w); resp.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", resp.Total, tt.wantTotal)
			}
		})
	}
}

func TestVideoHandler_Get(t *testing.T) {
	handler, _ := setupVideoHandler(t, nil)

	w := httptest.NewRecorder()
	handler.Get(w, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "videoID", "ncORPosDrjI"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp VideoResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ValidationStatus != "valid" || resp.ValidationMethod != "seed" {
		t.Errorf("validation = %s/%s", resp.ValidationStatus, resp.ValidationMethod)
	}

	w = httptest.NewRecorder()
	handler.Get(w, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "videoID", "missingAAAA"))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestVideoHandler_Add(t *testing.T) {
	handler, store := setupVideoHandler(t, nil)

	w := httptest.NewRecorder()
	handler.Add(w, httptest.NewRequest(http.MethodPost, "/api/v1/videos",
		body(`{"video_id":"UPBMG5EYydo","title":"Photosynthesis Explained","subject":"Biology","class_level":"class 7"}`)))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var resp AddResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Inserted || resp.Status != "pending" || resp.Topic != "photosynthesis" {
		t.Errorf("resp = %+v", resp)
	}

	v, err := store.Get(context.Background(), "UPBMG5EYydo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.Subject != "science" || v.ClassLevel != "7-8" {
		t.Errorf("stored = %s/%s, want science/7-8", v.Subject, v.ClassLevel)
	}

	// Adding the same id again keeps the existing row.
	w = httptest.NewRecorder()
	handler.Add(w, httptest.NewRequest(http.MethodPost, "/api/v1/videos",
		body(`{"video_id":"ncORPosDrjI","title":"dup","subject":"science"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("duplicate status = %d, want %d", w.Code, http.StatusOK)
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Inserted || resp.Status != "valid" {
		t.Errorf("duplicate resp = %+v", resp)
	}
}

func TestVideoHandler_Add_BadRequest(t *testing.T) {
	handler, _ := setupVideoHandler(t, nil)

	for _, b := range []string{`{`, `{"video_id":"x"}`, `{"video_id":"UPBMG5EYydo","class_level":"nursery"}`} {
		w := httptest.NewRecorder()
		handler.Add(w, httptest.NewRequest(http.MethodPost, "/api/v1/videos", body(b)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", b, w.Code, http.StatusBadRequest)
		}
	}
}

func TestVideoHandler_Delete(t *testing.T) {
	handler, store := setupVideoHandler(t, nil)

	w := httptest.NewRecorder()
	handler.Delete(w, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "videoID", "ncORPosDrjI"))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if _, err := store.Get(context.Background(), "ncORPosDrjI"); err != domain.ErrVideoNotFound {
		t.Errorf("Get err = %v, want ErrVideoNotFound", err)
	}

	w = httptest.NewRecorder()
	handler.Delete(w, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "videoID", "ncORPosDrjI"))
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestVideoHandler_Validate(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		result     domain.ValidationResult
		confirmed  bool
		wantStored string
		wantStatus domain.ValidationStatus
	}{
		{
			name:       "pending becomes valid",
			id:         "pendAAAAAAA",
			result:     domain.Valid("", domain.MethodMetadataAPI, nil),
			wantStored: "valid",
			wantStatus: domain.ValidationValid,
		},
		{
			name:       "confirmed failure downgrades",
			id:         "ncORPosDrjI",
			result:     domain.Invalid("", domain.MethodMetadataAPI, domain.ReasonPrivate),
			confirmed:  true,
			wantStored: "invalid",
			wantStatus: domain.ValidationInvalid,
		},
		{
			name:       "unconfirmed failure leaves row",
			id:         "ncORPosDrjI",
			result:     domain.Invalid("", "", domain.ReasonAllMethodsFailed),
			wantStatus: domain.ValidationValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &mockValidator{result: tt.result, confirmed: tt.confirmed}
			handler, store := setupVideoHandler(t, validator)

			w := httptest.NewRecorder()
			handler.Validate(w, withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), "videoID", tt.id))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
			}
			var resp ValidateResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Stored != tt.wantStored {
				t.Errorf("Stored = %q, want %q", resp.Stored, tt.wantStored)
			}
			v, _ := store.Get(context.Background(), domain.VideoID(tt.id))
			if v.ValidationStatus != tt.wantStatus {
				t.Errorf("stored status = %s, want %s", v.ValidationStatus, tt.wantStatus)
			}
		})
	}
}

func TestVideoHandler_Validate_UnknownAndMalformed(t *testing.T) {
	validator := &mockValidator{result: domain.Valid("", domain.MethodEmbedInfo, nil)}
	handler, _ := setupVideoHandler(t, validator)

	w := httptest.NewRecorder()
	handler.Validate(w, withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), "videoID", "notStoredAA"))
	if w.Code != http.StatusOK {
		t.Errorf("unknown id status = %d, want %d", w.Code, http.StatusOK)
	}

	w = httptest.NewRecorder()
	handler.Validate(w, withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), "videoID", "bad id"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if validator.calls != 1 {
		t.Errorf("validate calls = %d, want 1", validator.calls)
	}
}
