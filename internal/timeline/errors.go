package timeline

import (
	"errors"
	"fmt"
)

// Configuration and caller-contract errors. None of them are recoverable mid-render.
var (
	// ErrInvalidCurve indicates malformed keyframe data.
	ErrInvalidCurve = errors.New("timeline: invalid curve")

	// ErrEmptySequence indicates a sequencer built with zero steps.
	ErrEmptySequence = errors.New("timeline: empty step sequence")

	// ErrInvalidDuration indicates a total duration too short to give every step a frame.
	ErrInvalidDuration = errors.New("timeline: invalid total duration")

	// ErrFrameOutOfRange indicates a query outside [0, total).
	ErrFrameOutOfRange = errors.New("timeline: frame out of range")

	// ErrTransitionTooLong indicates a transition that does not fit inside a step window.
	ErrTransitionTooLong = errors.New("timeline: transition longer than step window")

	// ErrMissingConfiguration indicates a required top-level input is absent.
	ErrMissingConfiguration = errors.New("timeline: missing configuration")
)

// FrameError wraps an error with the frame that caused it.
type FrameError struct {
	Frame   Frame
	Total   int
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%v: frame %d not in [0, %d)", e.Wrapped, e.Frame, e.Total)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}

func outOfRange(f Frame, total int) error {
	return &FrameError{Frame: f, Total: total, Wrapped: ErrFrameOutOfRange}
}
