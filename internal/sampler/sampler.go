// Package sampler forwards every Nth frame of a source, keeping the
// original frame index.
package sampler

import (
	"context"
	"errors"
	"fmt"

	"vid2pdf/internal/source"
)

// DefaultStride samples every third frame.
const DefaultStride = 3

// ErrInvalidStride is returned for a stride below one.
var ErrInvalidStride = errors.New("sampling stride must be at least 1")

// Sampler yields frames whose index is a multiple of the stride.
type Sampler struct {
	src     source.Source
	skipper source.Skipper
	stride  int
	next    int
}

// New wraps src. Sources implementing source.Skipper have their unsampled
// frames skipped instead of decoded.
func New(src source.Source, stride int) (*Sampler, error) {
	if stride < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStride, stride)
	}
	s := &Sampler{src: src, stride: stride}
	if sk, ok := src.(source.Skipper); ok {
		s.skipper = sk
	}
	return s, nil
}

// Stride returns the sampling stride.
func (s *Sampler) Stride() int {
	return s.stride
}

// Next returns the next sampled frame, or io.EOF when the source ends.
func (s *Sampler) Next(ctx context.Context) (*source.Frame, error) {
	for {
		if s.next%s.stride != 0 && s.skipper != nil {
			if err := s.skipper.Skip(ctx); err != nil {
				return nil, err
			}
			s.next++
			continue
		}

		f, err := s.src.Next(ctx)
		if err != nil {
			return nil, err
		}
		s.next = f.Index + 1
		if f.Index%s.stride == 0 {
			return f, nil
		}
	}
}
