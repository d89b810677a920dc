package main

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

// writeSlides writes n white frames followed by n striped frames.
func writeSlides(t *testing.T, n int) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "slides")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	white := imaging.New(96, 54, color.White)
	striped := imaging.New(96, 54, color.Black)
	for y := 0; y < 54; y += 3 {
		for x := 0; x < 96; x++ {
			striped.Set(x, y, color.White)
		}
	}

	for i := 0; i < 2*n; i++ {
		img := white
		if i >= n {
			img = striped
		}
		if err := imaging.Save(img, filepath.Join(dir, fmt.Sprintf("frame%d.png", i))); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runCLI(t *testing.T, interactive bool, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("WORK_DIR", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, interactive)
	return code, stdout.String(), stderr.String()
}

func TestRunFrames(t *testing.T) {
	for _, stage := range []string{"sqlite", "memory"} {
		t.Run(stage, func(t *testing.T) {
			dir := writeSlides(t, 30)
			out := filepath.Join(t.TempDir(), "out.pdf")

			code, stdout, stderr := runCLI(t, false, "-frames", dir, "-fps", "10", "-stage", stage, "-o", out)
			if code != exitOK {
				t.Fatalf("exit %d, stderr: %s", code, stderr)
			}
			if !strings.Contains(stdout, "2 pages from 20 sampled frames at 10 fps") {
				t.Errorf("unexpected summary: %q", stdout)
			}

			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(data, []byte("%PDF-")) {
				t.Error("output is not a PDF")
			}
			if stderr != "" {
				t.Errorf("non-interactive run wrote to stderr: %q", stderr)
			}
		})
	}
}

func TestRunDefaultOutputName(t *testing.T) {
	dir := writeSlides(t, 5)
	chdir(t, t.TempDir())

	code, _, stderr := runCLI(t, false, "-frames", dir, "-fps", "5")
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	if _, err := os.Stat("slides.pdf"); err != nil {
		t.Errorf("default output not written: %v", err)
	}
}

func TestRunInteractiveProgress(t *testing.T) {
	dir := writeSlides(t, 5)
	out := filepath.Join(t.TempDir(), "out.pdf")

	code, _, stderr := runCLI(t, true, "-frames", dir, "-fps", "5", "-stride", "1", "-o", out)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stderr, "\rframe 9  sampled 10") || !strings.HasSuffix(stderr, "\n") {
		t.Errorf("unexpected progress output: %q", stderr)
	}
}

func TestRunUsageErrors(t *testing.T) {
	dir := writeSlides(t, 1)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no input", args: nil, want: exitUsage},
		{name: "two videos", args: []string{"a.mp4", "b.mp4"}, want: exitUsage},
		{name: "frames without fps", args: []string{"-frames", dir}, want: exitUsage},
		{name: "frames and video", args: []string{"-frames", dir, "-fps", "5", "a.mp4"}, want: exitUsage},
		{name: "unknown store", args: []string{"-stage", "redis", "a.mp4"}, want: exitUsage},
		{name: "zero stride", args: []string{"-stride", "0", "-frames", dir, "-fps", "5"}, want: exitUsage},
		{name: "threshold out of range", args: []string{"-threshold", "3", "-frames", dir, "-fps", "5"}, want: exitUsage},
		{name: "unknown flag", args: []string{"-bogus"}, want: exitUsage},
		{name: "help", args: []string{"-h"}, want: exitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, false, tt.args...)
			if code != tt.want {
				t.Errorf("exit = %d, want %d (stderr %q)", code, tt.want, stderr)
			}
		})
	}
}

func TestRunEmptyFrameDirectory(t *testing.T) {
	code, _, stderr := runCLI(t, false, "-frames", t.TempDir(), "-fps", "5", "-o", filepath.Join(t.TempDir(), "x.pdf"))
	if code != exitError {
		t.Errorf("exit = %d, want %d", code, exitError)
	}
	if !strings.Contains(stderr, "Error:") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRunMissingVideo(t *testing.T) {
	code, _, _ := runCLI(t, false, filepath.Join(t.TempDir(), "missing.mp4"))
	if code != exitError {
		t.Errorf("exit = %d, want %d", code, exitError)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
