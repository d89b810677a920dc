package similarity

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Reduced frame dimensions.
const (
	ReducedWidth  = 128
	ReducedHeight = 72
)

const (
	windowSize = 7
	k1         = 0.01
	k2         = 0.03

	// fullRange is used when a frame has no intensity spread at all.
	fullRange = 255.0
)

var (
	// ErrSizeMismatch is returned when the compared images differ in size.
	ErrSizeMismatch = errors.New("images must have the same dimensions")
	// ErrTooSmall is returned when an image is smaller than the SSIM window.
	ErrTooSmall = errors.New("images must be at least 7x7")
)

// Reduce converts img to Rec.601 luma and resizes it to 128x72 with
// bilinear filtering.
func Reduce(img image.Image) *image.Gray {
	small := imaging.Resize(imaging.Grayscale(img), ReducedWidth, ReducedHeight, imaging.Linear)

	out := image.NewGray(image.Rect(0, 0, ReducedWidth, ReducedHeight))
	for y := 0; y < ReducedHeight; y++ {
		src := small.Pix[y*small.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < ReducedWidth; x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}

// DynamicRange returns max-min of the pixel values, or 255 for a flat image.
func DynamicRange(img *image.Gray) float64 {
	b := img.Bounds()
	lo, hi := uint8(255), uint8(0)
	for y := 0; y < b.Dy(); y++ {
		for _, v := range img.Pix[y*img.Stride : y*img.Stride+b.Dx()] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	if hi <= lo {
		return fullRange
	}
	return float64(hi - lo)
}

// SSIM returns the mean structural similarity of x and y. 1 means identical.
func SSIM(x, y *image.Gray, dataRange float64) (float64, error) {
	bx, by := x.Bounds(), y.Bounds()
	if bx.Dx() != by.Dx() || bx.Dy() != by.Dy() {
		return 0, fmt.Errorf("%w: %v vs %v", ErrSizeMismatch, bx.Size(), by.Size())
	}
	if bx.Dx() < windowSize || bx.Dy() < windowSize {
		return 0, fmt.Errorf("%w: got %v", ErrTooSmall, bx.Size())
	}
	if dataRange <= 0 {
		dataRange = fullRange
	}
	return ssim(x, y, dataRange), nil
}

func ssim(x, y *image.Gray, dataRange float64) float64 {
	w, h := x.Bounds().Dx(), x.Bounds().Dy()
	const half = windowSize / 2
	const np = windowSize * windowSize
	const covNorm = float64(np) / float64(np-1)

	c1 := (k1 * dataRange) * (k1 * dataRange)
	c2 := (k2 * dataRange) * (k2 * dataRange)

	var total float64
	for cy := half; cy < h-half; cy++ {
		for cx := half; cx < w-half; cx++ {
			var sx, sy, sxx, syy, sxy float64
			for wy := cy - half; wy <= cy+half; wy++ {
				rx := x.Pix[wy*x.Stride:]
				ry := y.Pix[wy*y.Stride:]
				for wx := cx - half; wx <= cx+half; wx++ {
					a, b := float64(rx[wx]), float64(ry[wx])
					sx += a
					sy += b
					sxx += a * a
					syy += b * b
					sxy += a * b
				}
			}

			ux, uy := sx/np, sy/np
			vx := covNorm * (sxx/np - ux*ux)
			vy := covNorm * (syy/np - uy*uy)
			vxy := covNorm * (sxy/np - ux*uy)

			num := (2*ux*uy + c1) * (2*vxy + c2)
			den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
			total += num / den
		}
	}

	return total / float64((w-2*half)*(h-2*half))
}
