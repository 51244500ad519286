package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	const apiKey = "tutor-admin-key"

	tests := []struct {
		name     string
		query    string
		header   map[string]string
		wantCode int
		wantBody string
	}{
		{name: "x-api-key header", header: map[string]string{"X-API-Key": apiKey}, wantCode: http.StatusOK},
		{name: "bearer token", header: map[string]string{"Authorization": "Bearer " + apiKey}, wantCode: http.StatusOK},
		{name: "query param", query: "?key=" + apiKey, wantCode: http.StatusOK},
		{name: "query param among others", query: "?limit=5&key=" + apiKey, wantCode: http.StatusOK},
		{name: "header wins over query", query: "?key=wrong", header: map[string]string{"X-API-Key": apiKey}, wantCode: http.StatusOK},
		{name: "bearer wins over query", query: "?key=wrong", header: map[string]string{"Authorization": "Bearer " + apiKey}, wantCode: http.StatusOK},
		{name: "missing", wantCode: http.StatusUnauthorized, wantBody: `{"error":"missing API key"}`},
		{name: "wrong key", header: map[string]string{"X-API-Key": "nope"}, wantCode: http.StatusUnauthorized, wantBody: `{"error":"invalid API key"}`},
		{name: "short bearer", header: map[string]string{"Authorization": "Bear"}, wantCode: http.StatusUnauthorized},
		{name: "empty bearer", header: map[string]string{"Authorization": "Bearer "}, wantCode: http.StatusUnauthorized},
		{name: "lowercase bearer", header: map[string]string{"Authorization": "bearer " + apiKey}, wantCode: http.StatusUnauthorized},
		{name: "api_key param ignored", query: "?api_key=" + apiKey, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/videos"+tt.query, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			APIKeyAuth(apiKey)(okHandler()).ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusUnauthorized {
				if ct := w.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q, want application/json", ct)
				}
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAPIKeyAuth_EmptyConfiguredKey(t *testing.T) {
	handler := APIKeyAuth("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	for _, key := range []string{"", "anything"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("key %q: status = %d, want %d", key, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		method     string
		wantCode   int
		wantCalled bool
	}{
		{http.MethodGet, http.StatusOK, true},
		{http.MethodPost, http.StatusOK, true},
		{http.MethodDelete, http.StatusOK, true},
		{http.MethodOptions, http.StatusNoContent, false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			called := false
			handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/v1/resolve", nil))

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if called != tt.wantCalled {
				t.Errorf("called = %v, want %v", called, tt.wantCalled)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
			}
			if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, DELETE, OPTIONS" {
				t.Errorf("Access-Control-Allow-Methods = %q", got)
			}
		})
	}
}
