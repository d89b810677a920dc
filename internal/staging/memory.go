package staging

import (
	"context"
	"fmt"
	"image"
	"sync"

	"vid2pdf/internal/metrics"
)

const backendMemory = "memory"

// Memory stages frames in memory.
type Memory struct {
	mu      sync.Mutex
	records []Record
	frames  map[int][]byte
	closed  bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{frames: make(map[int][]byte)}
}

// Put stages a frame.
func (m *Memory) Put(ctx context.Context, rec Record, img image.Image) (err error) {
	defer func() { observe(backendMemory, "put", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if n := len(m.records); n > 0 && rec.FrameIndex <= m.records[n-1].FrameIndex {
		return fmt.Errorf("%w: %d after %d", ErrOutOfOrder, rec.FrameIndex, m.records[n-1].FrameIndex)
	}

	data, err := encodePNG(img)
	if err != nil {
		return err
	}

	m.records = append(m.records, rec)
	m.frames[rec.FrameIndex] = data
	metrics.StagedBytes.Add(float64(len(data)))
	return nil
}

// Records lists staged records by frame index.
func (m *Memory) Records(ctx context.Context) (records []Record, err error) {
	defer func() { observe(backendMemory, "records", err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	return append([]Record(nil), m.records...), nil
}

// Get returns a staged frame's PNG bytes.
func (m *Memory) Get(ctx context.Context, frameIndex int) (data []byte, err error) {
	defer func() { observe(backendMemory, "get", err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	data, ok := m.frames[frameIndex]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, frameIndex)
	}
	return data, nil
}

// Close releases the staged frames.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	m.frames = nil
	return nil
}
