package handlers

import (
	"context"
	"sync/atomic"
	"time"

	"vid2pdf/internal/memory"
	"vid2pdf/internal/pipeline"
	"vid2pdf/internal/source"
	"vid2pdf/internal/startup"
	"vid2pdf/internal/streaming"
)

// Opener opens an uploaded video as a frame source.
type Opener func(ctx context.Context, path string) (source.Source, error)

// OpenFFmpeg is the default Opener.
func OpenFFmpeg(ctx context.Context, path string) (source.Source, error) {
	return source.OpenFFmpeg(ctx, path)
}

type Handlers struct {
	options   pipeline.Options
	uploadDir string
	maxUpload int64
	open      Opener
	delivery  streaming.Config
	memory    *memory.Monitor
	slots     chan struct{}
	active    atomic.Int64
	startTime time.Time
}

// New returns handlers that run at most slots conversions at once. A nil
// monitor admits conversions regardless of memory usage.
func New(config *startup.Config, slots int, monitor *memory.Monitor) *Handlers {
	opts := pipeline.DefaultOptions()
	opts.SamplingStride = config.SamplingStride
	opts.SSIMThreshold = config.SSIMThreshold
	opts.WorkDir = config.StagingDir

	if slots < 1 {
		slots = 1
	}

	return &Handlers{
		options:   opts,
		uploadDir: config.UploadDir,
		maxUpload: config.MaxUploadBytes,
		open:      OpenFFmpeg,
		delivery:  streaming.DefaultConfig(),
		memory:    monitor,
		slots:     make(chan struct{}, slots),
		startTime: time.Now(),
	}
}

// acquire waits until memory allows another conversion and a slot is free.
func (h *Handlers) acquire(ctx context.Context) error {
	if h.memory != nil {
		if err := h.memory.Wait(ctx); err != nil {
			return err
		}
	}
	select {
	case h.slots <- struct{}{}:
		h.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handlers) release() {
	h.active.Add(-1)
	<-h.slots
}

func (h *Handlers) memoryPaused() bool {
	return h.memory != nil && h.memory.Paused()
}
