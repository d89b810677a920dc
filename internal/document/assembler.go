package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"vid2pdf/internal/logging"
	"vid2pdf/internal/metrics"
	"vid2pdf/internal/staging"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
)

// ErrNoPages is returned when the store holds no frames.
var ErrNoPages = errors.New("no frames to assemble")

// Options controls page layout.
type Options struct {
	PageWidth  float64 // mm
	FontFamily string
	FontSize   float64 // pt
	TextX      float64 // mm
	TextY      float64 // mm
	Title      string
}

// DefaultOptions returns A4-width pages with 12pt Helvetica at (5mm, 5mm).
func DefaultOptions() Options {
	return Options{
		PageWidth:  297,
		FontFamily: "Helvetica",
		FontSize:   12,
		TextX:      5,
		TextY:      5,
	}
}

// Page describes one assembled page.
type Page struct {
	FrameIndex       int       `json:"frameIndex"`
	TimestampSeconds int       `json:"timestampSeconds"`
	Timestamp        string    `json:"timestamp"`
	TextColor        TextColor `json:"textColor"`
	Luminance        float64   `json:"luminance"`
	Width            float64   `json:"width"`  // mm
	Height           float64   `json:"height"` // mm
}

// Document is an assembled PDF.
type Document struct {
	Pages []Page
	Data  []byte
}

// FrameStore is the read side of a staging store.
type FrameStore interface {
	Records(ctx context.Context) ([]staging.Record, error)
	Get(ctx context.Context, frameIndex int) ([]byte, error)
}

// Assembler builds documents.
type Assembler struct {
	opts Options
}

// NewAssembler returns an assembler. Zero option fields take their defaults.
func NewAssembler(opts Options) *Assembler {
	def := DefaultOptions()
	if opts.PageWidth <= 0 {
		opts.PageWidth = def.PageWidth
	}
	if opts.FontFamily == "" {
		opts.FontFamily = def.FontFamily
	}
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	if opts.TextX == 0 && opts.TextY == 0 {
		opts.TextX, opts.TextY = def.TextX, def.TextY
	}
	return &Assembler{opts: opts}
}

// Assemble renders every staged frame, in frame index order, as one page.
func (a *Assembler) Assemble(ctx context.Context, store FrameStore, fps int) (*Document, error) {
	records, err := store.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staged frames: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoPages
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("vid2pdf", true)
	if a.opts.Title != "" {
		pdf.SetTitle(a.opts.Title, true)
	}

	doc := &Document{Pages: make([]Page, 0, len(records))}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := a.addPage(ctx, pdf, store, rec, fps)
		if err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, page)
		metrics.OverlayColors.WithLabelValues(page.TextColor.String()).Inc()

		logging.Debug("Page %d: frame %d at %s, luminance %.1f, %s text",
			len(doc.Pages), page.FrameIndex, page.Timestamp, page.Luminance, page.TextColor)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	doc.Data = buf.Bytes()

	metrics.DocumentPages.Observe(float64(len(doc.Pages)))
	metrics.DocumentBytes.Observe(float64(len(doc.Data)))

	return doc, nil
}

func (a *Assembler) addPage(ctx context.Context, pdf *fpdf.Fpdf, store FrameStore, rec staging.Record, fps int) (Page, error) {
	data, err := store.Get(ctx, rec.FrameIndex)
	if err != nil {
		return Page{}, fmt.Errorf("failed to load frame %d: %w", rec.FrameIndex, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Page{}, fmt.Errorf("failed to decode frame %d: %w", rec.FrameIndex, err)
	}

	color, lum, err := ChooseTextColor(img)
	if err != nil {
		return Page{}, fmt.Errorf("frame %d: %w", rec.FrameIndex, err)
	}

	b := img.Bounds()
	w := a.opts.PageWidth
	h := w * float64(b.Dy()) / float64(b.Dx())

	// fpdf swaps width and height for landscape pages.
	orientation, size := "P", fpdf.SizeType{Wd: w, Ht: h}
	if w > h {
		orientation, size = "L", fpdf.SizeType{Wd: h, Ht: w}
	}
	pdf.AddPageFormat(orientation, size)

	name := fmt.Sprintf("frame-%d", rec.FrameIndex)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

	secs := TimestampSeconds(rec.FrameIndex, fps)
	ts := FormatTimestamp(secs)
	r, g, bl := color.RGB()
	pdf.SetTextColor(r, g, bl)
	pdf.SetFont(a.opts.FontFamily, "", a.opts.FontSize)
	pdf.SetXY(a.opts.TextX, a.opts.TextY)
	pdf.Cell(0, 0, ts)

	if pdf.Err() {
		return Page{}, fmt.Errorf("failed to render frame %d: %w", rec.FrameIndex, pdf.Error())
	}

	return Page{
		FrameIndex:       rec.FrameIndex,
		TimestampSeconds: secs,
		Timestamp:        ts,
		TextColor:        color,
		Luminance:        lum,
		Width:            w,
		Height:           h,
	}, nil
}
