// Package pipeline runs a conversion from a frame source to a PDF.
//
// Selection is a single sequential loop: the sampler forwards every Nth
// frame, the similarity gate scores it against the previous sample, and the
// selector decides whether a frame is committed. Committed frames go straight
// to a staging store, so at most one decoded frame, one reduction and one
// candidate are held at a time. Assembly then reads the store back in frame
// order.
//
// Failures are returned as *Error values carrying the stage and a kind that
// errors.Is matches: ErrDecode, ErrEmptyStream, ErrExtraction, ErrStaging,
// ErrAssembly or ErrCanceled. Any source failure, before or after the first
// frame, is ErrDecode. ErrExtraction means a committed frame is smaller than
// the overlay sample rectangle. A stream with no frames is an error, never an
// empty document. The staging store is closed on every path.
package pipeline
