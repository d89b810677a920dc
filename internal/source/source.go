package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidFPS is returned when a source reports a frame rate below one.
var ErrInvalidFPS = errors.New("frame rate must be at least 1 frame per second")

// Frame is one decoded full-resolution frame and its position in the stream.
type Frame struct {
	Index int
	Image image.Image
}

// Source yields decoded frames in order. Next returns io.EOF once the
// stream is exhausted.
type Source interface {
	FPS() int
	Next(ctx context.Context) (*Frame, error)
	Close() error
}

// Skipper is implemented by sources that can advance past a frame without
// decoding it into an image.
type Skipper interface {
	Skip(ctx context.Context) error
}

// WholeFPS truncates a measured frame rate to whole frames per second.
// 29.97 becomes 29; anything below 1 is rejected.
func WholeFPS(rate float64) (int, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 1 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidFPS, rate)
	}
	return int(rate), nil
}
