package staging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/disintegration/imaging"
)

type factory struct {
	name string
	open func(t *testing.T) Store
}

func backends() []factory {
	return []factory{
		{name: "sqlite", open: func(t *testing.T) Store {
			t.Helper()
			s, err := NewSQLite(context.Background(), t.TempDir())
			if err != nil {
				t.Fatalf("NewSQLite() error = %v", err)
			}
			return s
		}},
		{name: "memory", open: func(t *testing.T) Store {
			t.Helper()
			return NewMemory()
		}},
	}
}

func testImage(shade uint8) image.Image {
	return imaging.New(32, 18, color.NRGBA{R: shade, G: shade / 2, B: 255 - shade, A: 255})
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()

			recs := []Record{
				{FrameIndex: 0, TimestampSeconds: 0},
				{FrameIndex: 57, TimestampSeconds: 1},
				{FrameIndex: 1203, TimestampSeconds: 40},
			}
			for i, r := range recs {
				if err := s.Put(ctx, r, testImage(uint8(i*100))); err != nil {
					t.Fatalf("Put(%+v) error = %v", r, err)
				}
			}

			got, err := s.Records(ctx)
			if err != nil {
				t.Fatalf("Records() error = %v", err)
			}
			if len(got) != len(recs) {
				t.Fatalf("Records() = %v, want %v", got, recs)
			}
			for i := range recs {
				if got[i] != recs[i] {
					t.Errorf("Records()[%d] = %+v, want %+v", i, got[i], recs[i])
				}
			}

			data, err := s.Get(ctx, 57)
			if err != nil {
				t.Fatalf("Get(57) error = %v", err)
			}
			img, err := imaging.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("staged frame is not a decodable image: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 18 {
				t.Errorf("staged frame bounds = %v, want 32x18", b)
			}
			r, _, _, _ := img.At(0, 0).RGBA()
			if r>>8 != 100 {
				t.Errorf("staged frame red = %d, want 100", r>>8)
			}
		})
	}
}

func TestStoreOrdering(t *testing.T) {
	ctx := context.Background()

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()

			if err := s.Put(ctx, Record{FrameIndex: 30}, testImage(1)); err != nil {
				t.Fatal(err)
			}
			if err := s.Put(ctx, Record{FrameIndex: 30}, testImage(2)); !errors.Is(err, ErrOutOfOrder) {
				t.Errorf("duplicate Put error = %v, want ErrOutOfOrder", err)
			}
			if err := s.Put(ctx, Record{FrameIndex: 12}, testImage(3)); !errors.Is(err, ErrOutOfOrder) {
				t.Errorf("decreasing Put error = %v, want ErrOutOfOrder", err)
			}

			recs, err := s.Records(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(recs) != 1 {
				t.Errorf("Records() = %v, want one record", recs)
			}
		})
	}
}

func TestStoreNotFoundAndClosed(t *testing.T) {
	ctx := context.Background()

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)

			if _, err := s.Get(ctx, 5); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}

			recs, err := s.Records(ctx)
			if err != nil || len(recs) != 0 {
				t.Errorf("Records() on empty store = %v, %v", recs, err)
			}

			if err := s.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if err := s.Close(); err != nil {
				t.Errorf("second Close() error = %v", err)
			}
			if err := s.Put(ctx, Record{FrameIndex: 1}, testImage(1)); !errors.Is(err, ErrClosed) {
				t.Errorf("Put after Close error = %v, want ErrClosed", err)
			}
			if _, err := s.Records(ctx); !errors.Is(err, ErrClosed) {
				t.Errorf("Records after Close error = %v, want ErrClosed", err)
			}
		})
	}
}

func TestSQLiteCloseRemovesDirectory(t *testing.T) {
	parent := t.TempDir()
	s, err := NewSQLite(context.Background(), parent)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(context.Background(), Record{FrameIndex: 0}, testImage(9)); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(s.Dir()); err != nil {
		t.Fatalf("staging directory missing before Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Dir()); !os.IsNotExist(err) {
		t.Errorf("staging directory still present after Close: %v", err)
	}

	entries, err := os.ReadDir(parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("parent directory has %d leftover entries", len(entries))
	}
}

func TestSQLiteStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()

	a, err := NewSQLite(ctx, parent)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := NewSQLite(ctx, parent)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if a.Dir() == b.Dir() {
		t.Fatal("two stores share a directory")
	}
	if err := a.Put(ctx, Record{FrameIndex: 3}, testImage(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Get(ctx, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("frame leaked between stores: %v", err)
	}
}

func TestNewSQLiteBadParent(t *testing.T) {
	if _, err := NewSQLite(context.Background(), "/nonexistent/vid2pdf/parent"); err == nil {
		t.Error("NewSQLite with a missing parent should fail")
	}
}
