package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Stage names a pipeline step.
type Stage string

// Pipeline stages.
const (
	StageDecode   Stage = "decode"
	StageSelect   Stage = "select"
	StageStage    Stage = "stage"
	StageAssemble Stage = "assemble"
)

// Error kinds. Match them with errors.Is.
var (
	ErrDecode      = errors.New("failed to decode video")
	ErrEmptyStream = errors.New("video contains no frames")
	ErrExtraction  = errors.New("frame too small for timestamp overlay")
	ErrAssembly    = errors.New("failed to assemble document")
	ErrStaging     = errors.New("failed to stage frame")
	ErrCanceled    = errors.New("conversion canceled")
)

// Error is a pipeline failure: the stage it happened in, its kind and cause.
type Error struct {
	Stage Stage
	Kind  error
	Err   error
}

// NewError builds an Error. A context error as cause always yields ErrCanceled.
func NewError(stage Stage, kind, err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = ErrCanceled
	}
	return &Error{Stage: stage, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns a short label for the error kind, used in metrics.
func Status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	case errors.Is(err, ErrEmptyStream):
		return "empty_stream"
	case errors.Is(err, ErrExtraction):
		return "extraction_error"
	case errors.Is(err, ErrStaging):
		return "staging_error"
	case errors.Is(err, ErrAssembly):
		return "assembly_error"
	default:
		return "error"
	}
}
