package staging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"

	"vid2pdf/internal/metrics"

	"github.com/disintegration/imaging"
)

var (
	// ErrNotFound is returned by Get for an index that was never staged.
	ErrNotFound = errors.New("frame not staged")
	// ErrOutOfOrder is returned by Put when the index does not increase.
	ErrOutOfOrder = errors.New("frames must be staged in increasing index order")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("staging store is closed")
)

// Record identifies one committed frame.
type Record struct {
	FrameIndex       int `json:"frameIndex"`
	TimestampSeconds int `json:"timestampSeconds"`
}

// Store keeps committed frames for assembly.
type Store interface {
	// Put stages img under rec.FrameIndex, which must exceed every earlier index.
	Put(ctx context.Context, rec Record, img image.Image) error
	// Records lists staged records in increasing FrameIndex order.
	Records(ctx context.Context) ([]Record, error)
	// Get returns the PNG encoding of a staged frame.
	Get(ctx context.Context, frameIndex int) ([]byte, error)
	Close() error
}

// encodePNG stores 8-bit pixels; 16-bit sources are narrowed first.
func encodePNG(img image.Image) ([]byte, error) {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.Gray, *image.YCbCr, *image.Paletted:
	default:
		img = imaging.Clone(img)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func observe(backend, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StagingOperations.WithLabelValues(backend, operation, status).Inc()
}
