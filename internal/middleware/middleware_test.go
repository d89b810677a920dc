package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"vid2pdf/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if rw.statusCode != http.StatusOK {
		t.Errorf("default status = %d, want 200", rw.statusCode)
	}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("status = %d, second WriteHeader should be ignored", rw.statusCode)
	}

	n, err := rw.Write([]byte("test data"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 9 || rw.bytesWritten != 9 {
		t.Errorf("wrote %d, counted %d, want 9", n, rw.bytesWritten)
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/convert", "/api/convert"},
		{"a\nb\rc", "a b c"},
		{"evil\x1b[31m", "evil[31m"},
		{"nul\x00byte", "nulbyte"},
		{"tab\there", "tab\there"},
		{"del\x7f", "del"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		config        LoggingConfig
		expectLogging bool
	}{
		{name: "logs conversions", path: "/api/convert", config: DefaultLoggingConfig(), expectLogging: true},
		{name: "skips metrics", path: "/metrics", config: DefaultLoggingConfig(), expectLogging: false},
		{name: "logs health checks when enabled", path: "/health", config: LoggingConfig{LogHealthChecks: true}, expectLogging: true},
		{name: "skips health checks when disabled", path: "/readyz", config: LoggingConfig{LogHealthChecks: false}, expectLogging: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			handler := Logger(tt.config)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("ok"))
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			if logged := buf.Len() > 0; logged != tt.expectLogging {
				t.Errorf("logged = %v, want %v (%q)", logged, tt.expectLogging, buf.String())
			}
		})
	}
}

func TestFormatLogLine(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/convert?stride=5", strings.NewReader("abcd"))
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", "curl/8.0\ninjected")
	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusUnprocessableEntity)
	rw.Write([]byte("{}"))

	now := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	got := formatLogLine(req, rw, 1500*time.Millisecond, now)
	want := `2024-03-01 12:30:45 203.0.113.7 POST /api/convert stride=5 422 4 2 1500 "curl/8.0 injected"`
	if got != want {
		t.Errorf("formatLogLine()\n got %q\nwant %q", got, want)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, remote: "9.9.9.9:1", want: "1.2.3.4"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "4.3.2.1"}, remote: "9.9.9.9:1", want: "4.3.2.1"},
		{name: "remote addr", remote: "192.0.2.1:5555", want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/jobs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r.Use(Metrics(DefaultMetricsConfig()))

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/jobs/{id}", "202")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, http.NoBody))
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("requests recorded under template = %v, want 3", got)
	}
}

func TestMetricsMiddlewareSkipPaths(t *testing.T) {
	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "200")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	if got := testutil.ToFloat64(counter) - before; got != 0 {
		t.Errorf("health probe was recorded: %v", got)
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody))
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unrouted request recorded %v times, want 1", got)
	}
}

func TestCompressionMiddleware(t *testing.T) {
	large := strings.Repeat(`{"status":"healthy"}`, 100)

	tests := []struct {
		name           string
		contentType    string
		body           string
		acceptEncoding string
		wantGzip       bool
	}{
		{name: "large JSON", contentType: "application/json", body: large, acceptEncoding: "gzip, deflate", wantGzip: true},
		{name: "client without gzip", contentType: "application/json", body: large, wantGzip: false},
		{name: "small JSON", contentType: "application/json", body: `{"ok":true}`, acceptEncoding: "gzip", wantGzip: false},
		{name: "PDF", contentType: "application/pdf", body: large, acceptEncoding: "gzip", wantGzip: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusCreated)
				io.WriteString(w, tt.body)
			}))

			req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusCreated {
				t.Errorf("status = %d, want 201", rec.Code)
			}

			gotGzip := rec.Header().Get("Content-Encoding") == "gzip"
			if gotGzip != tt.wantGzip {
				t.Fatalf("gzip = %v, want %v", gotGzip, tt.wantGzip)
			}

			body := rec.Body.Bytes()
			if gotGzip {
				zr, err := gzip.NewReader(rec.Body)
				if err != nil {
					t.Fatal(err)
				}
				if body, err = io.ReadAll(zr); err != nil {
					t.Fatal(err)
				}
			}
			if string(body) != tt.body {
				t.Error("body does not round-trip")
			}
		})
	}
}

func TestCompressionEmptyBody(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Content-Encoding") != "" {
		t.Error("empty response should not be gzipped")
	}
}
