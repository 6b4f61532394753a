package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Writer encodes frames into a video file
type Writer struct {
	path   string
	vw     *gocv.VideoWriter
	frames int
}

// NewWriter creates the output video.  Every frame written must have the
// given width and height.
func NewWriter(path, codec string, fps float64, width, height int) (*Writer, error) {

	if err := ValidFourCC(codec); err != nil {
		return nil, err
	}

	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %.2f for %s", fps, path)
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d for %s", width, height, path)
	}

	vw, err := gocv.VideoWriterFile(path, codec, fps, width, height, true)

	if err != nil {
		return nil, fmt.Errorf("error creating video %s: %w", path, err)
	}

	if !vw.IsOpened() {
		vw.Close()
		return nil, fmt.Errorf("error creating video %s: codec %s not available", path, codec)
	}

	return &Writer{
		path: path,
		vw:   vw,
	}, nil
}

// Write appends a frame to the video
func (w *Writer) Write(img gocv.Mat) error {

	if err := w.vw.Write(img); err != nil {
		return err
	}

	w.frames++
	return nil
}

// Frames returns the number of frames written
func (w *Writer) Frames() int {
	return w.frames
}

// Path returns the file being written
func (w *Writer) Path() string {
	return w.path
}

// Close finishes the video file
func (w *Writer) Close() error {
	return w.vw.Close()
}
