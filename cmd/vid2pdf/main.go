package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"vid2pdf/internal/pipeline"
	"vid2pdf/internal/source"
	"vid2pdf/internal/staging"
	"vid2pdf/internal/startup"

	"golang.org/x/term"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage error")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, interactive))
}

type cliOptions struct {
	stride    int
	threshold float64
	output    string
	frames    string
	fps       int
	stage     string
	input     string
}

func parseArgs(args []string, config *startup.Config, stderr io.Writer) (*cliOptions, error) {
	opts := &cliOptions{}

	fs := flag.NewFlagSet("vid2pdf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.stride, "stride", config.SamplingStride, "sample every Nth frame")
	fs.Float64Var(&opts.threshold, "threshold", config.SSIMThreshold, "SSIM score below which a frame counts as changed")
	fs.StringVar(&opts.output, "o", "", "output PDF path (default <input name>.pdf)")
	fs.StringVar(&opts.frames, "frames", "", "directory of numbered frame images to use instead of a video")
	fs.IntVar(&opts.fps, "fps", 0, "frame rate of the images in -frames")
	fs.StringVar(&opts.stage, "stage", "sqlite", `staging store: "sqlite" or "memory"`)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: vid2pdf [flags] <video>")
		fmt.Fprintln(stderr, "       vid2pdf [flags] -frames <dir> -fps <n>")
		fmt.Fprintln(stderr, "")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch {
	case opts.frames != "" && fs.NArg() > 0:
		return nil, fmt.Errorf("%w: -frames cannot be combined with a video argument", errUsage)
	case opts.frames != "" && opts.fps < 1:
		return nil, fmt.Errorf("%w: -frames requires -fps of at least 1", errUsage)
	case opts.frames == "" && fs.NArg() != 1:
		return nil, fmt.Errorf("%w: expected exactly one video", errUsage)
	}
	if opts.stage != "sqlite" && opts.stage != "memory" {
		return nil, fmt.Errorf("%w: unknown staging store %q", errUsage, opts.stage)
	}

	opts.input = fs.Arg(0)
	if opts.frames != "" {
		opts.input = opts.frames
	}
	if opts.output == "" {
		opts.output = pipeline.SuggestedFilename(filepath.Base(filepath.Clean(opts.input)))
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, interactive bool) int {
	config, err := startup.FromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	opts, err := parseArgs(args, config, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitUsage
	}

	pipeOpts := pipeline.DefaultOptions()
	pipeOpts.SamplingStride = opts.stride
	pipeOpts.SSIMThreshold = opts.threshold
	pipeOpts.WorkDir = config.StagingDir
	if opts.stage == "memory" {
		pipeOpts.NewStore = func(context.Context) (staging.Store, error) {
			return staging.NewMemory(), nil
		}
	}

	var progress *progressLine
	if interactive {
		progress = &progressLine{w: stderr}
		pipeOpts.Progress = progress.update
	}

	conv, err := pipeline.New(pipeOpts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if opts.stage == "sqlite" {
		if err := os.MkdirAll(config.StagingDir, 0o755); err != nil {
			fmt.Fprintf(stderr, "Error: cannot create staging directory: %v\n", err)
			return exitError
		}
	}

	src, err := openInput(ctx, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer func() {
		if err := src.Close(); err != nil {
			fmt.Fprintf(stderr, "Warning: failed to close input: %v\n", err)
		}
	}()

	start := time.Now()
	result, err := conv.Convert(ctx, src, opts.input)
	progress.finish()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if err := os.WriteFile(opts.output, result.Document.Data, 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: failed to write %s: %v\n", opts.output, err)
		return exitError
	}

	stats := result.Stats
	fmt.Fprintf(stdout, "Wrote %s: %d pages from %d sampled frames at %d fps (%d dropped) in %v\n",
		opts.output, len(result.Document.Pages), stats.Sampled, stats.FPS, stats.Dropped,
		time.Since(start).Round(time.Millisecond))
	return exitOK
}

func openInput(ctx context.Context, opts *cliOptions) (source.Source, error) {
	if opts.frames != "" {
		return source.OpenSequence(opts.frames, opts.fps)
	}
	return source.OpenFFmpeg(ctx, opts.input)
}

// progressLine redraws a single status line on a terminal.
type progressLine struct {
	w     io.Writer
	drawn bool
}

func (p *progressLine) update(pr pipeline.Progress) {
	p.drawn = true
	fmt.Fprintf(p.w, "\rframe %d  sampled %d  selected %d", pr.FrameIndex, pr.Sampled, pr.Selected)
}

func (p *progressLine) finish() {
	if p != nil && p.drawn {
		fmt.Fprintln(p.w)
	}
}
