package video

import (
	"fmt"
	"io"

	"github.com/swdee/go-faceveil"
	"gocv.io/x/gocv"
)

// Capture reads decoded frames from a video file
type Capture struct {
	path   string
	vc     *gocv.VideoCapture
	meta   faceveil.VideoMetadata
	next   int
	closed bool
}

// OpenCapture opens a video file and reads its metadata
func OpenCapture(path string) (*Capture, error) {

	vc, err := gocv.VideoCaptureFile(path)

	if err != nil {
		return nil, fmt.Errorf("error opening video %s: %w", path, err)
	}

	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("error opening video %s: not a readable video", path)
	}

	c := &Capture{
		path: path,
		vc:   vc,
	}

	c.meta = faceveil.NewVideoMetadata(
		int(vc.Get(gocv.VideoCaptureFrameCount)),
		int(vc.Get(gocv.VideoCaptureFrameWidth)),
		int(vc.Get(gocv.VideoCaptureFrameHeight)),
		vc.Get(gocv.VideoCaptureFPS),
		DecodeFourCC(vc.Get(gocv.VideoCaptureFOURCC)),
	)

	return c, nil
}

// Path returns the file being read
func (c *Capture) Path() string {
	return c.path
}

// Metadata describes the video as reported when it was opened
func (c *Capture) Metadata() faceveil.VideoMetadata {
	return c.meta
}

// Next decodes the next frame, io.EOF is returned once the video has no
// more frames
func (c *Capture) Next() (faceveil.Frame, error) {

	if c.closed {
		return faceveil.Frame{}, fmt.Errorf("capture %s is closed", c.path)
	}

	mat := gocv.NewMat()

	if ok := c.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()

		if !c.vc.IsOpened() {
			return faceveil.Frame{}, fmt.Errorf("capture %s stopped at frame %d", c.path, c.next)
		}

		return faceveil.Frame{}, io.EOF
	}

	frame := faceveil.NewFrame(c.next, mat)
	c.next++

	return frame, nil
}

// Rewind seeks back to the first frame so the video can be read again
func (c *Capture) Rewind() error {

	if c.closed {
		return fmt.Errorf("capture %s is closed", c.path)
	}

	c.vc.Set(gocv.VideoCapturePosFrames, 0)
	c.next = 0

	return nil
}

// Close releases the capture, further calls do nothing
func (c *Capture) Close() error {

	if c.closed {
		return nil
	}

	c.closed = true
	return c.vc.Close()
}
