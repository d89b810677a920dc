package source

import (
	"context"
	"fmt"
	"image"
	"io"
)

// Slice serves in-memory images as a stream.
type Slice struct {
	fps    int
	images []image.Image
	pos    int
}

// NewSlice returns a source over images at the given frame rate.
func NewSlice(fps int, images ...image.Image) (*Slice, error) {
	if fps < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFPS, fps)
	}
	return &Slice{fps: fps, images: images}, nil
}

// FPS returns the frame rate.
func (s *Slice) FPS() int {
	return s.fps
}

// Next returns the next image.
func (s *Slice) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.images) {
		return nil, io.EOF
	}
	f := &Frame{Index: s.pos, Image: s.images[s.pos]}
	s.pos++
	return f, nil
}

// Skip advances past the next image.
func (s *Slice) Skip(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.pos >= len(s.images) {
		return io.EOF
	}
	s.pos++
	return nil
}

// Close is a no-op.
func (s *Slice) Close() error {
	return nil
}
