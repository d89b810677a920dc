// Package similarity scores how much a sampled frame differs from the
// previous one.
//
// Frames are reduced to a 128x72 grayscale image ([Reduce]) and compared
// with the structural similarity index ([SSIM]): a 7x7 uniform window,
// K1=0.01, K2=0.03, sample covariance, averaged over every pixel whose
// window lies inside the image. The data range is the spread of the
// current frame's intensities.
//
// A [Gate] keeps exactly one reduction, the most recent sampled frame,
// and replaces it on every evaluation:
//
//	gate := similarity.NewGate(similarity.DefaultThreshold)
//	res := gate.Evaluate(frame.Image)
//	if res.Changed {
//	    // the slide moved on
//	}
package similarity
