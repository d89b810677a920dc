package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"vid2pdf/internal/logging"
	"vid2pdf/internal/metrics"
)

// ErrNoVideoStream is returned when ffprobe finds no usable video stream.
var ErrNoVideoStream = errors.New("no video stream found")

// StreamInfo describes the first video stream of a file. Width and Height
// are the displayed dimensions, after the stream's rotation is applied.
type StreamInfo struct {
	Codec     string  `json:"codec"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Rotation  int     `json:"rotation"`
	FrameRate float64 `json:"frameRate"`
}

type probeOutput struct {
	Streams []struct {
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		SideDataList []struct {
			Rotation *float64 `json:"rotation"`
		} `json:"side_data_list"`
		Tags struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
	} `json:"streams"`
}

// Probe reads codec, displayed dimensions, rotation and frame rate of the
// first video stream.
func Probe(ctx context.Context, path string) (*StreamInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,width,height,avg_frame_rate,r_frame_rate:stream_tags=rotate:stream_side_data=rotation",
		"-of", "json",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w - %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseProbe(stdout.Bytes())
}

func parseProbe(data []byte) (*StreamInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return nil, ErrNoVideoStream
	}

	s := out.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrNoVideoStream, s.Width, s.Height)
	}

	rate, err := parseRate(s.AvgFrameRate)
	if err != nil || rate == 0 {
		// Variable frame rate streams can report 0/0 as the average.
		rate, err = parseRate(s.RFrameRate)
		if err != nil {
			return nil, err
		}
	}

	// The display matrix rotation wins over the legacy rotate tag.
	rotation := 0
	if tag := strings.TrimSpace(s.Tags.Rotate); tag != "" {
		if r, err := strconv.Atoi(tag); err == nil {
			rotation = r
		}
	}
	for _, sd := range s.SideDataList {
		if sd.Rotation != nil {
			rotation = int(math.Round(*sd.Rotation))
			break
		}
	}
	rotation = ((rotation % 360) + 360) % 360

	// ffmpeg applies the rotation while decoding, so quarter turns swap
	// the frame dimensions.
	width, height := s.Width, s.Height
	if rotation == 90 || rotation == 270 {
		width, height = height, width
	}

	return &StreamInfo{Codec: s.CodecName, Width: width, Height: height, Rotation: rotation, FrameRate: rate}, nil
}

// parseRate parses ffprobe's rational frame rates such as "30000/1001".
func parseRate(s string) (float64, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}

// FFmpeg decodes a video file through an ffmpeg process emitting raw rgb24 frames.
type FFmpeg struct {
	path   string
	info   *StreamInfo
	fps    int
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stderr bytes.Buffer
	frames *rawReader

	waitOnce sync.Once
	waitErr  error
}

// OpenFFmpeg probes path and starts the decoder. The process is bound to ctx
// and is killed by Close or when ctx ends.
func OpenFFmpeg(ctx context.Context, path string) (*FFmpeg, error) {
	info, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	fps, err := WholeFPS(info.FrameRate)
	if err != nil {
		return nil, err
	}

	pctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(pctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-an", "-sn",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)

	f := &FFmpeg{path: path, info: info, fps: fps, cmd: cmd, cancel: cancel}
	cmd.Stderr = &f.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	f.frames = newRawReader(stdout, info.Width, info.Height)

	logging.Debug("Decoding %s: %s %dx%d at %.3f fps (using %d)",
		path, info.Codec, info.Width, info.Height, info.FrameRate, fps)

	return f, nil
}

// Info returns the probed stream description.
func (f *FFmpeg) Info() StreamInfo {
	return *f.info
}

// FPS returns the stream frame rate truncated to whole frames per second.
func (f *FFmpeg) FPS() int {
	return f.fps
}

// Next decodes the next frame.
func (f *FFmpeg) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := f.frames.next()
	if err != nil {
		return nil, f.streamErr(err)
	}
	metrics.FramesDecoded.WithLabelValues("ffmpeg").Inc()

	return &Frame{Index: f.frames.index - 1, Image: img}, nil
}

// Skip discards the next frame without building an image.
func (f *FFmpeg) Skip(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.frames.skip(); err != nil {
		return f.streamErr(err)
	}
	metrics.FramesSkipped.WithLabelValues("ffmpeg").Inc()
	return nil
}

// streamErr turns a read failure into io.EOF on a clean exit, or into the
// decoder's own error when ffmpeg failed.
func (f *FFmpeg) streamErr(readErr error) error {
	if readErr != io.EOF {
		if waitErr := f.wait(); waitErr != nil {
			return f.decoderErr(waitErr)
		}
		return fmt.Errorf("reading frame %d of %s: %w", f.frames.index, f.path, readErr)
	}

	if err := f.wait(); err != nil {
		return f.decoderErr(err)
	}
	return io.EOF
}

func (f *FFmpeg) decoderErr(err error) error {
	msg := strings.TrimSpace(f.stderr.String())
	if msg == "" {
		return fmt.Errorf("ffmpeg error: %w", err)
	}
	return fmt.Errorf("ffmpeg error: %w - %s", err, msg)
}

func (f *FFmpeg) wait() error {
	f.waitOnce.Do(func() {
		f.waitErr = f.cmd.Wait()
	})
	return f.waitErr
}

// Close stops the decoder and releases the process.
func (f *FFmpeg) Close() error {
	f.cancel()
	err := f.wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Killed on purpose or already reported by Next.
		return nil
	}
	return err
}

// rawReader slices a packed rgb24 byte stream into frames.
type rawReader struct {
	r      io.Reader
	width  int
	height int
	buf    []byte
	index  int
}

func newRawReader(r io.Reader, width, height int) *rawReader {
	return &rawReader{r: r, width: width, height: height, buf: make([]byte, width*height*3)}
}

func (rr *rawReader) frameSize() int64 {
	return int64(len(rr.buf))
}

func (rr *rawReader) next() (image.Image, error) {
	if _, err := io.ReadFull(rr.r, rr.buf); err != nil {
		return nil, err
	}
	rr.index++

	img := image.NewNRGBA(image.Rect(0, 0, rr.width, rr.height))
	for i, j := 0, 0; i < len(rr.buf); i, j = i+3, j+4 {
		img.Pix[j] = rr.buf[i]
		img.Pix[j+1] = rr.buf[i+1]
		img.Pix[j+2] = rr.buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

func (rr *rawReader) skip() error {
	n, err := io.CopyN(io.Discard, rr.r, rr.frameSize())
	if err != nil {
		if err == io.EOF && n > 0 {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	rr.index++
	return nil
}
