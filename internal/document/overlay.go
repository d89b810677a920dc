package document

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// LuminanceThreshold separates dark corners (white text) from light ones.
const LuminanceThreshold = 64

// OverlayRegion is the pixel rectangle sampled for the text color,
// relative to the image origin.
var OverlayRegion = image.Rect(5, 5, 65, 20)

// ErrRegionOutOfBounds is returned when the sampled rectangle does not lie
// entirely inside the image.
var ErrRegionOutOfBounds = errors.New("overlay region outside image")

// TextColor is the color of the timestamp text.
type TextColor int

const (
	// TextDark is black text for light backgrounds.
	TextDark TextColor = iota
	// TextLight is white text for dark backgrounds.
	TextLight
)

// RGB returns the color components for the PDF text color.
func (c TextColor) RGB() (r, g, b int) {
	if c == TextLight {
		return 255, 255, 255
	}
	return 0, 0, 0
}

func (c TextColor) String() string {
	if c == TextLight {
		return "light"
	}
	return "dark"
}

// MarshalText renders the color by name.
func (c TextColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ColorForLuminance applies the threshold.
func ColorForLuminance(mean float64) TextColor {
	if mean < LuminanceThreshold {
		return TextLight
	}
	return TextDark
}

// MeanLuminance returns the mean Rec.601 luma of region, given relative to
// the image origin. The region must fit inside the image; it is never clipped.
func MeanLuminance(img image.Image, region image.Rectangle) (float64, error) {
	b := img.Bounds()
	r := region.Add(b.Min)
	if r.Empty() || !r.In(b) {
		return 0, fmt.Errorf("%w: %v in %v", ErrRegionOutOfBounds, region, b)
	}

	gray := imaging.Grayscale(imaging.Crop(img, r))
	var sum float64
	n := 0
	for y := 0; y < gray.Rect.Dy(); y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < gray.Rect.Dx(); x++ {
			sum += float64(row[x*4])
			n++
		}
	}
	return sum / float64(n), nil
}

// ChooseTextColor samples OverlayRegion of img.
func ChooseTextColor(img image.Image) (TextColor, float64, error) {
	mean, err := MeanLuminance(img, OverlayRegion)
	if err != nil {
		return TextDark, 0, err
	}
	return ColorForLuminance(mean), mean, nil
}
