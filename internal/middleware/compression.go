package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the smallest first write that gets compressed
	MinSize int
	// CompressibleTypes lists media types eligible for compression
	CompressibleTypes []string
}

// DefaultCompressionConfig compresses JSON and plain text. PDF bodies are
// already deflated and pass through untouched.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:           512,
		CompressibleTypes: []string{"application/json", "text/plain"},
	}
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		return gzip.NewWriter(nil)
	},
}

// gzipResponseWriter decides on the first write whether to compress,
// based on the Content-Type the handler set and the size of that write.
type gzipResponseWriter struct {
	http.ResponseWriter
	config     CompressionConfig
	gz         *gzip.Writer
	statusCode int
	decided    bool
}

func (g *gzipResponseWriter) WriteHeader(code int) {
	if g.decided {
		return
	}
	g.statusCode = code
}

func (g *gzipResponseWriter) Write(data []byte) (int, error) {
	if !g.decided {
		g.decide(len(data))
	}
	if g.gz != nil {
		return g.gz.Write(data)
	}
	return g.ResponseWriter.Write(data)
}

func (g *gzipResponseWriter) decide(size int) {
	g.decided = true

	if size >= g.config.MinSize && g.compressible() {
		h := g.Header()
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")

		g.gz = gzipWriterPool.Get().(*gzip.Writer)
		g.gz.Reset(g.ResponseWriter)
	}
	if g.statusCode != 0 {
		g.ResponseWriter.WriteHeader(g.statusCode)
	}
}

func (g *gzipResponseWriter) compressible() bool {
	if g.Header().Get("Content-Encoding") != "" {
		return false
	}
	mediaType, _, _ := strings.Cut(g.Header().Get("Content-Type"), ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	for _, t := range g.config.CompressibleTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}

func (g *gzipResponseWriter) Flush() {
	if g.gz != nil {
		g.gz.Flush()
	}
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// close flushes a pending header for empty bodies and returns the gzip
// writer to the pool.
func (g *gzipResponseWriter) close() error {
	if !g.decided {
		g.decide(0)
	}
	if g.gz == nil {
		return nil
	}
	err := g.gz.Close()
	gzipWriterPool.Put(g.gz)
	g.gz = nil
	return err
}

// Compression returns a middleware that gzips eligible responses for
// clients that accept it.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			gzw := &gzipResponseWriter{ResponseWriter: w, config: config}
			defer gzw.close()
			next.ServeHTTP(gzw, r)
		})
	}
}
