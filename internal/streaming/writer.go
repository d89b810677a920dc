package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"vid2pdf/internal/logging"
)

var (
	// ErrWriteTimeout is returned when a chunk could not be written in time.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone is returned when the request context ends mid-copy.
	ErrClientGone = errors.New("client disconnected")
)

// Config controls chunking and timeouts.
type Config struct {
	// WriteTimeout bounds each chunk write (0 disables the bound)
	WriteTimeout time.Duration
	// ChunkSize is the largest single write (0 writes as received)
	ChunkSize int
}

func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    256 * 1024,
	}
}

// Writer wraps an http.ResponseWriter with per-chunk timeouts. After a
// timeout the underlying writer may still be busy, so every later write
// fails immediately.
type Writer struct {
	w        http.ResponseWriter
	ctx      context.Context
	config   Config
	flusher  http.Flusher
	written  int64
	timedOut bool
}

func NewWriter(ctx context.Context, w http.ResponseWriter, config Config) *Writer {
	sw := &Writer{w: w, ctx: ctx, config: config}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	return sw
}

// Write implements io.Writer.
func (sw *Writer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		chunk := p
		if sw.config.ChunkSize > 0 && len(chunk) > sw.config.ChunkSize {
			chunk = chunk[:sw.config.ChunkSize]
		}

		n, err := sw.writeChunk(chunk)
		total += n
		if err != nil {
			return total, err
		}
		p = p[len(chunk):]

		if sw.flusher != nil {
			sw.flusher.Flush()
		}
	}
	return total, nil
}

func (sw *Writer) writeChunk(p []byte) (int, error) {
	if sw.timedOut {
		return 0, ErrWriteTimeout
	}
	if sw.ctx.Err() != nil {
		return 0, ErrClientGone
	}

	if sw.config.WriteTimeout <= 0 {
		n, err := sw.w.Write(p)
		sw.written += int64(n)
		return n, err
	}

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := sw.w.Write(p)
		done <- result{n, err}
	}()

	timer := time.NewTimer(sw.config.WriteTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		sw.written += int64(res.n)
		return res.n, res.err
	case <-timer.C:
		sw.timedOut = true
		return 0, ErrWriteTimeout
	case <-sw.ctx.Done():
		sw.timedOut = true
		return 0, ErrClientGone
	}
}

// Written returns the number of bytes accepted by the connection.
func (sw *Writer) Written() int64 {
	return sw.written
}

// Send copies r to w and returns the number of bytes delivered.
func Send(ctx context.Context, w http.ResponseWriter, r io.Reader, config Config) (int64, error) {
	start := time.Now()
	sw := NewWriter(ctx, w, config)

	_, err := io.Copy(sw, r)
	logging.Debug("Delivered %d bytes in %v", sw.Written(), time.Since(start))
	return sw.Written(), err
}
