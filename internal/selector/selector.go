// Package selector decides which sampled frames become pages.
//
// The selector commits the first sampled frame, then tracks a candidate:
// the most recent sampled frame. When the similarity gate reports a change,
// the candidate (the last frame of the previous slide) is committed if the
// stream has moved more than one second past the last commit. Changes inside
// that window still replace the candidate, so a rapid sequence of changes
// loses its intermediate frames. There is no flush at end of stream.
//
// # Spacing
//
// The window is checked twice: the frame that reported the change and the
// candidate about to be committed must both lie more than fps frames past
// the last commit. The first check alone would let a candidate exactly fps
// frames after the last commit through (fps 30, stride 3, change at 33
// would commit frame 30), breaking the guarantee that committed frames are
// more than fps frames apart. Such a candidate is dropped and counted in
// Dropped.
package selector

import (
	"vid2pdf/internal/similarity"
	"vid2pdf/internal/source"
)

// State is the selector's position in its state machine.
type State int

const (
	// StateNone means no frame has been committed yet.
	StateNone State = iota
	// StateTracking means a candidate is being tracked.
	StateTracking
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Decision tells the caller whether to commit a frame.
type Decision struct {
	Commit bool
	Frame  *source.Frame
}

// Selector holds the candidate and the index of the last committed frame.
type Selector struct {
	fps           int
	state         State
	candidate     *source.Frame
	lastCommitted int
	dropped       int
}

// New returns a selector for a stream at fps frames per second.
func New(fps int) *Selector {
	return &Selector{fps: fps, lastCommitted: -1}
}

// Observe feeds one sampled frame and its similarity result.
func (s *Selector) Observe(f *source.Frame, res similarity.Result) Decision {
	if s.state == StateNone {
		s.state = StateTracking
		s.candidate = f
		s.lastCommitted = f.Index
		return Decision{Commit: true, Frame: f}
	}

	var d Decision
	if res.Changed {
		prev := s.candidate
		if f.Index-s.lastCommitted > s.fps && prev.Index-s.lastCommitted > s.fps {
			s.lastCommitted = prev.Index
			d = Decision{Commit: true, Frame: prev}
		} else if prev.Index != s.lastCommitted {
			s.dropped++
		}
	}

	s.candidate = f
	return d
}

// State returns the current state.
func (s *Selector) State() State {
	return s.state
}

// Candidate returns the frame currently tracked, or nil before the first frame.
func (s *Selector) Candidate() *source.Frame {
	return s.candidate
}

// LastCommitted returns the index of the last committed frame, or -1.
func (s *Selector) LastCommitted() int {
	return s.lastCommitted
}

// Dropped returns how many candidates were lost to the spacing window.
func (s *Selector) Dropped() int {
	return s.dropped
}
