package detector

import (
	"fmt"
	"image"

	"github.com/swdee/go-faceveil"
	"gocv.io/x/gocv"
)

// SSD detects faces with the OpenCV res10 300x300 SSD model, loaded from
// either a Caffe or TensorFlow model and config pair
type SSD struct {
	net       gocv.Net
	threshold float32
	cold      bool
}

// NewSSD loads the network and selects the CPU target
func NewSSD(p Params) (*SSD, error) {

	net := gocv.ReadNet(p.ModelPath, p.ConfigPath)

	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", p.ModelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)

	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set preferable backend or target")
	}

	return &SSD{
		net:       net,
		threshold: p.ScoreThreshold,
		cold:      true,
	}, nil
}

// FindFaces returns the faces found on the frame, clamped to its bounds
func (s *SSD) FindFaces(frame faceveil.Frame) ([]faceveil.BoundingBox, error) {

	mat := frame.Mat

	if mat.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	blob := gocv.BlobFromImage(mat, 1.0, image.Pt(300, 300),
		gocv.NewScalar(104, 177, 123, 0), false, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	// each detection is [image id, class id, confidence, left, top, right, bottom]
	rows := output.Reshape(1, output.Total()/7)
	defer rows.Close()

	cols := float32(mat.Cols())
	height := float32(mat.Rows())

	var boxes []faceveil.BoundingBox

	for i := 0; i < rows.Rows(); i++ {
		if rows.GetFloatAt(i, 2) < s.threshold {
			continue
		}

		x1 := clamp(int(rows.GetFloatAt(i, 3)*cols), mat.Cols()-1)
		y1 := clamp(int(rows.GetFloatAt(i, 4)*height), mat.Rows()-1)
		x2 := clamp(int(rows.GetFloatAt(i, 5)*cols), mat.Cols()-1)
		y2 := clamp(int(rows.GetFloatAt(i, 6)*height), mat.Rows()-1)

		if x2 <= x1 || y2 <= y1 {
			continue
		}

		boxes = append(boxes, faceveil.BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2})
	}

	return boxes, nil
}

// Warmup runs detection once on a 640x480 noise frame
func (s *SSD) Warmup() error {

	if !s.cold {
		return nil
	}

	if err := warmup(s); err != nil {
		return err
	}

	s.cold = false
	return nil
}

// Close releases the network
func (s *SSD) Close() error {
	return s.net.Close()
}

// clamp v to the range [0, max]
func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
