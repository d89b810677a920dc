package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"vid2pdf/internal/staging"

	"github.com/disintegration/imaging"
)

func uniform(w, h int, y uint8) *image.NRGBA {
	return imaging.New(w, h, color.NRGBA{R: y, G: y, B: y, A: 255})
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{61, "00:01:01"},
		{3723, "01:02:03"},
		{86399, "23:59:59"},
		{360000, "100:00:00"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestTimestampSeconds(t *testing.T) {
	tests := []struct {
		index, fps, want int
	}{
		{0, 30, 0},
		{29, 30, 0},
		{30, 30, 1},
		{111690, 30, 3723},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := TimestampSeconds(tt.index, tt.fps); got != tt.want {
			t.Errorf("TimestampSeconds(%d, %d) = %d, want %d", tt.index, tt.fps, got, tt.want)
		}
	}
}

func TestChooseTextColor(t *testing.T) {
	tests := []struct {
		luminance uint8
		want      TextColor
	}{
		{10, TextLight},
		{63, TextLight},
		{64, TextDark},
		{200, TextDark},
	}
	for _, tt := range tests {
		got, mean, err := ChooseTextColor(uniform(320, 180, tt.luminance))
		if err != nil {
			t.Fatalf("ChooseTextColor(%d) error = %v", tt.luminance, err)
		}
		if mean != float64(tt.luminance) {
			t.Errorf("mean luminance = %v, want %d", mean, tt.luminance)
		}
		if got != tt.want {
			t.Errorf("ChooseTextColor(%d) = %v, want %v", tt.luminance, got, tt.want)
		}
	}
}

func TestMeanLuminanceOnlySamplesRegion(t *testing.T) {
	img := uniform(320, 180, 250)
	for y := 5; y < 20; y++ {
		for x := 5; x < 65; x++ {
			img.Set(x, y, color.Black)
		}
	}
	got, err := MeanLuminance(img, OverlayRegion)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("MeanLuminance() = %v, want 0", got)
	}
}

func TestMeanLuminanceOffsetBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(100, 100, 300, 200))
	for y := 100; y < 200; y++ {
		for x := 100; x < 300; x++ {
			img.Set(x, y, color.White)
		}
	}
	for y := 105; y < 120; y++ {
		for x := 105; x < 165; x++ {
			img.Set(x, y, color.Black)
		}
	}
	c, mean, err := ChooseTextColor(img)
	if err != nil {
		t.Fatal(err)
	}
	if c != TextLight || mean != 0 {
		t.Errorf("ChooseTextColor() = %v (%v), want light (0)", c, mean)
	}
}

func TestMeanLuminanceOutOfBounds(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{name: "tiny", w: 4, h: 4, wantErr: true},
		{name: "partially covered", w: 30, h: 10, wantErr: true},
		{name: "one pixel short", w: 64, h: 20, wantErr: true},
		{name: "exact fit", w: 65, h: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MeanLuminance(uniform(tt.w, tt.h, 90), OverlayRegion)
			if tt.wantErr {
				if !errors.Is(err, ErrRegionOutOfBounds) {
					t.Errorf("MeanLuminance(%dx%d) error = %v, want ErrRegionOutOfBounds", tt.w, tt.h, err)
				}
				return
			}
			if err != nil || got != 90 {
				t.Errorf("MeanLuminance(%dx%d) = %v, %v; want 90", tt.w, tt.h, got, err)
			}
		})
	}
}

func TestAssembleFrameTooSmall(t *testing.T) {
	store := stage(t, map[int]image.Image{0: uniform(30, 10, 90)}, []int{0}, 30)

	if _, err := NewAssembler(DefaultOptions()).Assemble(context.Background(), store, 30); !errors.Is(err, ErrRegionOutOfBounds) {
		t.Errorf("Assemble() error = %v, want ErrRegionOutOfBounds", err)
	}
}

func TestTextColor(t *testing.T) {
	if r, g, b := TextLight.RGB(); r != 255 || g != 255 || b != 255 {
		t.Errorf("TextLight.RGB() = %d,%d,%d", r, g, b)
	}
	if r, g, b := TextDark.RGB(); r != 0 || g != 0 || b != 0 {
		t.Errorf("TextDark.RGB() = %d,%d,%d", r, g, b)
	}
	data, err := json.Marshal(Page{TextColor: TextLight})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"textColor":"light"`) {
		t.Errorf("Page JSON = %s", data)
	}
}

func stage(t *testing.T, frames map[int]image.Image, order []int, fps int) *staging.Memory {
	t.Helper()
	s := staging.NewMemory()
	t.Cleanup(func() { s.Close() })
	for _, idx := range order {
		rec := staging.Record{FrameIndex: idx, TimestampSeconds: TimestampSeconds(idx, fps)}
		if err := s.Put(context.Background(), rec, frames[idx]); err != nil {
			t.Fatalf("Put(%d) error = %v", idx, err)
		}
	}
	return s
}

func countPages(pdf []byte) int {
	return bytes.Count(pdf, []byte("/Type /Page")) - bytes.Count(pdf, []byte("/Type /Pages"))
}

func TestAssemble(t *testing.T) {
	frames := map[int]image.Image{
		0:      uniform(1280, 720, 10),
		57:     uniform(1280, 720, 200),
		111690: uniform(640, 480, 63),
	}
	store := stage(t, frames, []int{0, 57, 111690}, 30)

	a := NewAssembler(Options{Title: "lecture"})
	doc, err := a.Assemble(context.Background(), store, 30)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if !bytes.HasPrefix(doc.Data, []byte("%PDF-")) {
		t.Fatalf("document does not start with a PDF header")
	}
	if n := countPages(doc.Data); n != 3 {
		t.Errorf("PDF has %d pages, want 3", n)
	}

	want := []Page{
		{FrameIndex: 0, TimestampSeconds: 0, Timestamp: "00:00:00", TextColor: TextLight, Width: 297, Height: 167.0625},
		{FrameIndex: 57, TimestampSeconds: 1, Timestamp: "00:00:01", TextColor: TextDark, Width: 297, Height: 167.0625},
		{FrameIndex: 111690, TimestampSeconds: 3723, Timestamp: "01:02:03", TextColor: TextLight, Width: 297, Height: 222.75},
	}
	if len(doc.Pages) != len(want) {
		t.Fatalf("got %d pages, want %d", len(doc.Pages), len(want))
	}
	for i, w := range want {
		got := doc.Pages[i]
		got.Luminance = 0
		if got != w {
			t.Errorf("page %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestAssemblePortraitFrame(t *testing.T) {
	store := stage(t, map[int]image.Image{0: uniform(720, 1280, 128)}, []int{0}, 25)

	doc, err := NewAssembler(DefaultOptions()).Assemble(context.Background(), store, 25)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	p := doc.Pages[0]
	if p.Width != 297 || p.Height <= p.Width {
		t.Errorf("portrait page = %vx%v, want 297 wide and taller than wide", p.Width, p.Height)
	}
}

func TestAssembleEmptyStore(t *testing.T) {
	store := staging.NewMemory()
	defer store.Close()

	if _, err := NewAssembler(DefaultOptions()).Assemble(context.Background(), store, 30); !errors.Is(err, ErrNoPages) {
		t.Errorf("Assemble() error = %v, want ErrNoPages", err)
	}
}

func TestAssembleCanceled(t *testing.T) {
	store := stage(t, map[int]image.Image{0: uniform(64, 36, 0)}, []int{0}, 30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewAssembler(DefaultOptions()).Assemble(ctx, store, 30); !errors.Is(err, context.Canceled) {
		t.Errorf("Assemble() error = %v, want context.Canceled", err)
	}
}

type brokenStore struct{}

func (brokenStore) Records(context.Context) ([]staging.Record, error) {
	return []staging.Record{{FrameIndex: 4}}, nil
}

func (brokenStore) Get(context.Context, int) ([]byte, error) {
	return []byte("not an image"), nil
}

func TestAssembleUndecodableFrame(t *testing.T) {
	if _, err := NewAssembler(DefaultOptions()).Assemble(context.Background(), brokenStore{}, 30); err == nil {
		t.Error("Assemble() should fail on an undecodable frame")
	}
}
