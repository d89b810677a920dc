package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"vid2pdf/internal/handlers"
	"vid2pdf/internal/startup"
)

func testRouterHandlers(t *testing.T) *handlers.Handlers {
	t.Helper()
	work := t.TempDir()
	cfg := &startup.Config{
		WorkDir:        work,
		UploadDir:      filepath.Join(work, "uploads"),
		StagingDir:     filepath.Join(work, "staging"),
		SamplingStride: startup.DefaultSamplingStride,
		SSIMThreshold:  startup.DefaultSSIMThreshold,
		MaxUploadBytes: 1 << 20,
		MaxConversions: 1,
	}
	for _, dir := range []string{cfg.UploadDir, cfg.StagingDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return handlers.New(cfg, 1, nil)
}

func TestSetupRouter(t *testing.T) {
	router := setupRouter(testRouterHandlers(t))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/livez", http.StatusOK},
		{http.MethodHead, "/livez", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/version", http.StatusOK},
		{http.MethodGet, "/api/convert", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/convert", http.StatusBadRequest},
		{http.MethodGet, "/", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, http.NoBody))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSetupRouterRoutes(t *testing.T) {
	routes, err := startup.GetRoutes(setupRouter(testRouterHandlers(t)))
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, r := range routes {
		if r.Path == "/api/convert" {
			found = true
		}
	}
	if !found {
		t.Errorf("convert route missing from %v", routes)
	}
}
