package faceveil

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceFailed is reported when the frame source stops with an error
	// before it is exhausted
	ErrSourceFailed = errors.New("frame source failed")
	// ErrCancelled is reported when the pipeline context is cancelled before
	// every frame was processed
	ErrCancelled = errors.New("pipeline cancelled")
	// ErrUnknownDetector is returned for a detector name that has no backend
	ErrUnknownDetector = errors.New("unknown detector")
	// ErrModelNotFound is returned when a detector model file is missing
	ErrModelNotFound = errors.New("model file not found")
	// ErrInvalidConfig is returned when pipeline options are out of range
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FrameError is a detection failure isolated to a single frame
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Index, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// SourceError is a failure of the frame source, Frame is the index of the
// frame that could not be read
type SourceError struct {
	Frame int
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("reading frame %d: %v", e.Frame, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceFailed, e.Err}
}
