package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAnalyzeWithoutOrchestratorReturns503(t *testing.T) {
	s := NewServer(nil, nil, "data.csv", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(`{"query":"why did roas drop"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message in the body")
	}
}

func TestReportsWithoutStorageReturn503(t *testing.T) {
	s := NewServer(nil, nil, "data.csv", nil)

	for _, path := range []string{"/api/reports", "/api/reports/r1", "/api/reports/r1/html"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s: expected 503, got %d", path, w.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	s := NewServer(nil, nil, "data.csv", nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
