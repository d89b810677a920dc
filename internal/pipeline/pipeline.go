package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"vid2pdf/internal/document"
	"vid2pdf/internal/logging"
	"vid2pdf/internal/metrics"
	"vid2pdf/internal/sampler"
	"vid2pdf/internal/selector"
	"vid2pdf/internal/similarity"
	"vid2pdf/internal/source"
	"vid2pdf/internal/staging"
)

// ErrInvalidThreshold is returned for a threshold outside [-1, 1].
var ErrInvalidThreshold = errors.New("similarity threshold must be within [-1, 1]")

// Progress reports selection progress after each sampled frame.
type Progress struct {
	FrameIndex int
	Sampled    int
	Selected   int
}

// Options configures a Converter.
type Options struct {
	SamplingStride int
	SSIMThreshold  float64

	// WorkDir is the parent directory for SQLite staging stores. Empty uses
	// the system temporary directory.
	WorkDir  string
	Document document.Options

	// NewStore overrides the staging store. Each call must return a new store.
	NewStore func(ctx context.Context) (staging.Store, error)

	Progress func(Progress)
}

// DefaultOptions returns stride 3, threshold 0.8 and SQLite staging.
func DefaultOptions() Options {
	return Options{
		SamplingStride: sampler.DefaultStride,
		SSIMThreshold:  similarity.DefaultThreshold,
		Document:       document.DefaultOptions(),
	}
}

// Validate checks the selection settings.
func (o Options) Validate() error {
	if o.SamplingStride < 1 {
		return fmt.Errorf("%w: got %d", sampler.ErrInvalidStride, o.SamplingStride)
	}
	if o.SSIMThreshold < -1 || o.SSIMThreshold > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, o.SSIMThreshold)
	}
	return nil
}

// Stats summarizes a selection pass.
type Stats struct {
	FPS      int `json:"fps"`
	Sampled  int `json:"sampled"`
	Selected int `json:"selected"`
	Dropped  int `json:"dropped"`
}

// Result is a finished conversion.
type Result struct {
	Document *document.Document
	Filename string
	Records  []staging.Record
	Stats    Stats
}

// Converter runs conversions. It holds no per-run state and is safe for
// concurrent use.
type Converter struct {
	opts Options
}

// New returns a converter for opts.
func New(opts Options) (*Converter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.NewStore == nil {
		dir := opts.WorkDir
		opts.NewStore = func(ctx context.Context) (staging.Store, error) {
			return staging.NewSQLite(ctx, dir)
		}
	}
	return &Converter{opts: opts}, nil
}

// Options returns the converter's settings.
func (c *Converter) Options() Options {
	return c.opts
}

// Select runs sampling, scoring and selection over src, staging every
// committed frame in store.
func (c *Converter) Select(ctx context.Context, src source.Source, store staging.Store) ([]staging.Record, Stats, error) {
	fps := src.FPS()
	stats := Stats{FPS: fps}
	if fps < 1 {
		return nil, stats, NewError(StageDecode, ErrDecode, fmt.Errorf("%w: got %d", source.ErrInvalidFPS, fps))
	}

	smp, err := sampler.New(src, c.opts.SamplingStride)
	if err != nil {
		return nil, stats, NewError(StageDecode, ErrDecode, err)
	}
	gate := similarity.NewGate(c.opts.SSIMThreshold)
	sel := selector.New(fps)

	var records []staging.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, NewError(StageSelect, ErrCanceled, err)
		}

		f, err := smp.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, NewError(StageDecode, ErrDecode, err)
		}

		stats.Sampled++
		metrics.FramesSampled.Inc()

		res := gate.Evaluate(f.Image)
		if res.Compared {
			metrics.SimilarityScore.Observe(res.Score)
		}

		if d := sel.Observe(f, res); d.Commit {
			rec := staging.Record{
				FrameIndex:       d.Frame.Index,
				TimestampSeconds: document.TimestampSeconds(d.Frame.Index, fps),
			}
			if err := store.Put(ctx, rec, d.Frame.Image); err != nil {
				return nil, stats, NewError(StageStage, ErrStaging, err)
			}
			records = append(records, rec)
			stats.Selected++
			metrics.FramesSelected.Inc()
			logging.Debug("Committed frame %d (%s) at sample %d, score %.4f",
				rec.FrameIndex, document.FormatTimestamp(rec.TimestampSeconds), f.Index, res.Score)
		}

		if c.opts.Progress != nil {
			c.opts.Progress(Progress{FrameIndex: f.Index, Sampled: stats.Sampled, Selected: stats.Selected})
		}
	}

	stats.Dropped = sel.Dropped()
	metrics.CandidatesDropped.Add(float64(stats.Dropped))

	if stats.Sampled == 0 {
		return nil, stats, NewError(StageDecode, ErrEmptyStream, nil)
	}
	return records, stats, nil
}

// Convert selects frames from src and assembles them into a PDF. name is the
// source file name, used for the suggested output name and document title.
func (c *Converter) Convert(ctx context.Context, src source.Source, name string) (*Result, error) {
	start := time.Now()
	metrics.ConversionsInFlight.Inc()
	defer metrics.ConversionsInFlight.Dec()

	result, err := c.convert(ctx, src, name)

	metrics.ConversionsTotal.WithLabelValues(Status(err)).Inc()
	metrics.ConversionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		logging.Warn("Conversion of %s failed after %v: %v", name, time.Since(start), err)
		return nil, err
	}

	logging.Info("Converted %s: %d frames sampled, %d pages, %d candidates dropped in %v",
		name, result.Stats.Sampled, len(result.Document.Pages), result.Stats.Dropped, time.Since(start))
	return result, nil
}

func (c *Converter) convert(ctx context.Context, src source.Source, name string) (*Result, error) {
	store, err := c.opts.NewStore(ctx)
	if err != nil {
		return nil, NewError(StageStage, ErrStaging, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn("failed to release staging store: %v", err)
		}
	}()

	selectStart := time.Now()
	records, stats, err := c.Select(ctx, src, store)
	metrics.StageDuration.WithLabelValues("select").Observe(time.Since(selectStart).Seconds())
	if err != nil {
		return nil, err
	}

	docOpts := c.opts.Document
	if docOpts.Title == "" {
		docOpts.Title = baseName(name)
	}

	assembleStart := time.Now()
	doc, err := document.NewAssembler(docOpts).Assemble(ctx, store, stats.FPS)
	metrics.StageDuration.WithLabelValues("assemble").Observe(time.Since(assembleStart).Seconds())
	if errors.Is(err, document.ErrRegionOutOfBounds) {
		return nil, NewError(StageAssemble, ErrExtraction, err)
	}
	if err != nil {
		return nil, NewError(StageAssemble, ErrAssembly, err)
	}

	return &Result{
		Document: doc,
		Filename: SuggestedFilename(name),
		Records:  records,
		Stats:    stats,
	}, nil
}

// SuggestedFilename returns the source base name with a .pdf extension.
func SuggestedFilename(name string) string {
	base := baseName(name)
	if base == "" {
		return "frames.pdf"
	}
	return base + ".pdf"
}

func baseName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
