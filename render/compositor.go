package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/rs/zerolog"
	"github.com/swdee/go-faceveil"
	"gocv.io/x/gocv"
)

// Compositor draws the faces detected in a sliding window of frames around
// each output position
type Compositor struct {
	// WindowSize is the number of frames drawn per output frame
	WindowSize int
	Shape      Shape
	Color      color.RGBA
	// Padding grows each box by this many pixels before drawing
	Padding int
	Log     zerolog.Logger
}

// DefaultCompositor returns a compositor drawing green rectangles over a 30
// frame window
func DefaultCompositor() *Compositor {
	return &Compositor{
		WindowSize: 30,
		Shape:      ShapeRectangle,
		Color:      Green,
		Padding:    0,
		Log:        zerolog.Nop(),
	}
}

// FrameCount returns the number of output positions for the sequence.  A
// complete sequence has one position per result, a partial one keeps the
// frame numbering of the source so gaps do not shift later frames.
func (c *Compositor) FrameCount(seq *faceveil.Sequence, meta faceveil.VideoMetadata) int {

	if !seq.Partial() {
		return seq.Len()
	}

	return max(meta.FrameCount, seq.LastIndex()+1)
}

// DrawFrame draws the shapes for every face detected in the window around
// position p
func (c *Compositor) DrawFrame(canvas Canvas, seq *faceveil.Sequence, p, frameCount int) {

	start, end := Window(p, frameCount, c.WindowSize)
	bounds := canvas.Bounds()

	for _, res := range seq.Range(start, end) {
		for _, box := range res.Boxes {
			c.drawBox(canvas, box, bounds)
		}
	}
}

// drawBox fills the configured shape over a single box
func (c *Compositor) drawBox(canvas Canvas, box faceveil.BoundingBox, bounds image.Rectangle) {

	if c.Padding > 0 {
		box = Pad(box, c.Padding, bounds)
	}

	switch c.Shape {
	case ShapeCircle:
		center, radius := Circle(box)
		canvas.FillCircle(center, radius, c.Color)

	default:
		canvas.FillRect(Rect(box), c.Color)
	}
}

// WriteOverlay renders the shapes on a black background for every position
// and appends them to the writer.  It returns the number of frames written.
func (c *Compositor) WriteOverlay(ctx context.Context, w faceveil.FrameWriter,
	seq *faceveil.Sequence, meta faceveil.VideoMetadata) (int, error) {

	if meta.Width <= 0 || meta.Height <= 0 {
		return 0, fmt.Errorf("invalid frame size %dx%d", meta.Width, meta.Height)
	}

	frameCount := c.FrameCount(seq, meta)

	c.Log.Debug().Int("window", c.WindowSize).Int("frames", frameCount).
		Msg("writing overlay")

	mat := gocv.NewMatWithSize(meta.Height, meta.Width, gocv.MatTypeCV8UC3)
	defer mat.Close()

	canvas := NewMatCanvas(&mat)
	black := gocv.NewScalar(0, 0, 0, 0)

	for p := 0; p < frameCount; p++ {
		if err := ctx.Err(); err != nil {
			return p, err
		}

		mat.SetTo(black)
		c.DrawFrame(canvas, seq, p, frameCount)

		if err := w.Write(mat); err != nil {
			return p, fmt.Errorf("error writing overlay frame %d: %w", p, err)
		}
	}

	return frameCount, nil
}

// WriteMerged draws the shapes over each frame read from src and appends
// them to the writer.  The caller remains responsible for closing src.
func (c *Compositor) WriteMerged(ctx context.Context, w faceveil.FrameWriter,
	src faceveil.FrameSource, seq *faceveil.Sequence, meta faceveil.VideoMetadata) (int, error) {

	frameCount := c.FrameCount(seq, meta)

	c.Log.Debug().Int("window", c.WindowSize).Int("frames", frameCount).
		Msg("writing merged video")

	written := 0

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		frame, err := src.Next()

		if errors.Is(err, io.EOF) {
			return written, nil
		}

		if err != nil {
			return written, fmt.Errorf("error reading frame %d: %w", written, err)
		}

		c.DrawFrame(NewMatCanvas(&frame.Mat), seq, frame.Index, frameCount)
		err = w.Write(frame.Mat)
		_ = frame.Close()

		if err != nil {
			return written, fmt.Errorf("error writing merged frame %d: %w", frame.Index, err)
		}

		written++
	}
}

// Preview renders the overlay at position p to an image
func (c *Compositor) Preview(seq *faceveil.Sequence, p int, meta faceveil.VideoMetadata) *image.RGBA {

	canvas := NewBlankCanvas(meta.Width, meta.Height)
	c.DrawFrame(canvas, seq, p, c.FrameCount(seq, meta))

	return canvas.Image()
}
