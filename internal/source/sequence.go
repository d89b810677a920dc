package source

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"vid2pdf/internal/filesystem"
	"vid2pdf/internal/logging"
	"vid2pdf/internal/mediatypes"
	"vid2pdf/internal/metrics"

	"github.com/disintegration/imaging"

	// Decoders for frame formats the standard library lacks.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Sequence reads a directory of still images as a video stream. Files are
// ordered by natural name order, so frame_2.png comes before frame_10.png.
type Sequence struct {
	dir   string
	fps   int
	files []string
	pos   int
	retry filesystem.RetryConfig
}

// OpenSequence lists the image files in dir. fps gives the rate the images
// were extracted at and must be at least 1.
func OpenSequence(dir string, fps int) (*Sequence, error) {
	if fps < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFPS, fps)
	}

	retry := filesystem.DefaultRetryConfig()
	entries, err := filesystem.ReadDirWithRetry(dir, retry)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !mediatypes.IsImage(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Slice(files, func(i, j int) bool { return naturalLess(files[i], files[j]) })

	logging.Debug("Frame sequence %s: %d images at %d fps", dir, len(files), fps)

	return &Sequence{dir: dir, fps: fps, files: files, retry: retry}, nil
}

// Len returns the number of frames in the sequence.
func (s *Sequence) Len() int {
	return len(s.files)
}

// FPS returns the configured frame rate.
func (s *Sequence) FPS() int {
	return s.fps
}

// Next decodes the next image, applying its EXIF orientation.
func (s *Sequence) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.files) {
		return nil, io.EOF
	}

	path := filepath.Join(s.dir, s.files[s.pos])
	f, err := filesystem.OpenWithRetry(path, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", path, err)
	}
	metrics.FramesDecoded.WithLabelValues("sequence").Inc()

	frame := &Frame{Index: s.pos, Image: img}
	s.pos++
	return frame, nil
}

// Skip advances past the next image without opening it.
func (s *Sequence) Skip(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.pos >= len(s.files) {
		return io.EOF
	}
	s.pos++
	metrics.FramesSkipped.WithLabelValues("sequence").Inc()
	return nil
}

// Close is a no-op; files are closed after each decode.
func (s *Sequence) Close() error {
	return nil
}

// naturalLess compares names treating runs of digits as numbers.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			ta, tb := trimZeros(na), trimZeros(nb)
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			a, b = ra, rb
		case a[0] != b[0]:
			return a[0] < b[0]
		default:
			a, b = a[1:], b[1:]
		}
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func splitDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}
