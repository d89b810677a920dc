package similarity

import (
	"image"
)

// DefaultThreshold is the score below which a frame counts as changed.
const DefaultThreshold = 0.8

// Result is the outcome of comparing one sampled frame with the previous one.
type Result struct {
	Score    float64
	Compared bool // false for the first frame, which has no reference
	Changed  bool // Compared && Score < threshold
}

// Gate holds the reduction of the last evaluated frame.
type Gate struct {
	threshold float64
	reference *image.Gray
}

// NewGate returns a gate with no reference.
func NewGate(threshold float64) *Gate {
	return &Gate{threshold: threshold}
}

// Threshold returns the change threshold.
func (g *Gate) Threshold() float64 {
	return g.threshold
}

// Evaluate scores img against the reference, then makes img's reduction
// the new reference regardless of the outcome.
func (g *Gate) Evaluate(img image.Image) Result {
	current := Reduce(img)
	defer func() { g.reference = current }()

	if g.reference == nil {
		return Result{}
	}

	// Both reductions are ReducedWidth x ReducedHeight, so SSIM cannot fail.
	score := ssim(current, g.reference, DynamicRange(current))
	return Result{
		Score:    score,
		Compared: true,
		Changed:  score < g.threshold,
	}
}

// Reset drops the reference so the next frame is treated as the first.
func (g *Gate) Reset() {
	g.reference = nil
}
