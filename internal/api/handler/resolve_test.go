package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iconidentify/learnvid/internal/domain"
	"github.com/iconidentify/learnvid/internal/service"
)

func TestResolveHandler_Resolve(t *testing.T) {
	video := domain.NewVideo(domain.Candidate{VideoID: "ncORPosDrjI", Title: "The Water Cycle", Subject: "science", Topic: "water_cycle", ClassLevel: "4-6"})
	video.ValidationStatus = domain.ValidationValid
	resolver := &mockResolver{res: &service.Resolution{
		Video:   video,
		Source:  service.SourceCurated,
		Subject: "science",
		Topic:   "water_cycle",
	}}
	handler := NewResolveHandler(resolver, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolve",
		body(`{"query":"what is the water cycle","subject":"science","class_level":"4-6","language":"Hinglish"}`))
	w := httptest.NewRecorder()
	handler.Resolve(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp ResolveResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Video.VideoID != "ncORPosDrjI" || resp.Source != "curated" {
		t.Errorf("got %s from %s", resp.Video.VideoID, resp.Source)
	}
	if resp.Video.EmbedURL != "https://www.youtube.com/embed/ncORPosDrjI" {
		t.Errorf("EmbedURL = %q", resp.Video.EmbedURL)
	}
	if resolver.query != "what is the water cycle" {
		t.Errorf("query = %q", resolver.query)
	}
	if resolver.lc.ClassLevel != "4-6" || resolver.lc.Language != domain.LanguageHinglish {
		t.Errorf("learner context = %+v", resolver.lc)
	}
}

func TestResolveHandler_Resolve_Warning(t *testing.T) {
	result := domain.Valid("liveAAAAAAA", domain.MethodExistenceProbe, nil)
	result.Warning = domain.WarningEmbeddabilityUnconfirmed
	resolver := &mockResolver{res: &service.Resolution{
		Video:      domain.NewVideo(domain.Candidate{VideoID: "liveAAAAAAA"}),
		Source:     service.SourceLiveSearch,
		Validation: &result,
	}}
	handler := NewResolveHandler(resolver, testLogger())

	w := httptest.NewRecorder()
	handler.Resolve(w, httptest.NewRequest(http.MethodPost, "/api/v1/resolve", body(`{"query":"volcanoes"}`)))

	var resp ResolveResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Warning != domain.WarningEmbeddabilityUnconfirmed {
		t.Errorf("Warning = %q", resp.Warning)
	}
}

func TestResolveHandler_Resolve_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "bad json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "nothing to resolve", body: `{"query":"  "}`, wantStatus: http.StatusBadRequest},
		{name: "exhausted", body: `{"query":"volcanoes"}`, err: domain.ErrNoVideoFound, wantStatus: http.StatusNotFound},
		{name: "internal", body: `{"subject":"science"}`, err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewResolveHandler(&mockResolver{err: tt.err}, testLogger())

			w := httptest.NewRecorder()
			handler.Resolve(w, httptest.NewRequest(http.MethodPost, "/api/v1/resolve", body(tt.body)))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
