package faceveil

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// BoundingBox is an axis aligned rectangle in absolute pixel coordinates of
// the source frame.  X1 <= X2 and Y1 <= Y2.
type BoundingBox struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// NewBoundingBox returns a BoundingBox from two corners given in any order
func NewBoundingBox(x1, y1, x2, y2 int) BoundingBox {

	if x1 > x2 {
		x1, x2 = x2, x1
	}

	if y1 > y2 {
		y1, y2 = y2, y1
	}

	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width of the box
func (b BoundingBox) Width() int {
	return b.X2 - b.X1
}

// Height of the box
func (b BoundingBox) Height() int {
	return b.Y2 - b.Y1
}

// String returns the box in (x1 y1 x2 y2) form
func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d %d %d %d)", b.X1, b.Y1, b.X2, b.Y2)
}

// DetectionResult holds the boxes found on a single frame
type DetectionResult struct {
	// FrameIndex is the index of the frame in the source video
	FrameIndex int
	// Boxes are the faces found, order among them is not significant
	Boxes []BoundingBox
}

// Frame is one decoded video image.  A Frame is never mutated once created,
// whoever holds it last must call Close.
type Frame struct {
	Index  int
	Width  int
	Height int
	Mat    gocv.Mat
}

// NewFrame wraps a decoded Mat as the frame at the given index
func NewFrame(index int, mat gocv.Mat) Frame {

	f := Frame{
		Index: index,
		Mat:   mat,
	}

	if mat.Ptr() != nil {
		f.Width = mat.Cols()
		f.Height = mat.Rows()
	}

	return f
}

// Close frees the frame pixel buffer.  Frames without a buffer are ignored.
func (f *Frame) Close() error {

	if f.Mat.Ptr() == nil {
		return nil
	}

	return f.Mat.Close()
}

// VideoMetadata describes the source video, it is derived once when the
// source is opened
type VideoMetadata struct {
	FrameCount int
	Width      int
	Height     int
	FPS        float64
	Duration   time.Duration
	// Codec is the four character code of the source stream
	Codec string
}

// NewVideoMetadata returns metadata with the Duration calculated from the
// frame count and frame rate
func NewVideoMetadata(frameCount, width, height int, fps float64, codec string) VideoMetadata {

	m := VideoMetadata{
		FrameCount: frameCount,
		Width:      width,
		Height:     height,
		FPS:        fps,
		Codec:      codec,
	}

	if fps > 0 {
		m.Duration = time.Duration(float64(frameCount) / fps * float64(time.Second))
	}

	return m
}

// String returns a readable summary of the metadata
func (m VideoMetadata) String() string {
	return fmt.Sprintf("frames=%d size=%dx%d fps=%.2f duration=%s codec=%s",
		m.FrameCount, m.Width, m.Height, m.FPS, m.Duration, m.Codec)
}
