package faceveil

import (
	"gocv.io/x/gocv"
)

// FrameSource produces frames in strictly increasing index order.  Next
// returns io.EOF once the source is exhausted.
type FrameSource interface {
	// Metadata describes the video being read
	Metadata() VideoMetadata
	// Next returns the next decoded frame
	Next() (Frame, error)
	// Close releases the source
	Close() error
}

// FrameWriter appends frames to an output video
type FrameWriter interface {
	Write(img gocv.Mat) error
}
