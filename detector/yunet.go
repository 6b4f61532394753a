package detector

import (
	"fmt"
	"image"

	"github.com/swdee/go-faceveil"
	"gocv.io/x/gocv"
)

// yunetCols is the number of values per face row, the box, five landmarks
// and the score
const yunetCols = 15

// YuNet detects faces with the OpenCV YuNet model
type YuNet struct {
	fd gocv.FaceDetectorYN
	// cold is true until the first successful warmup
	cold bool
}

// NewYuNet loads the YuNet ONNX model
func NewYuNet(p Params) (*YuNet, error) {

	fd := gocv.NewFaceDetectorYNWithParams(p.ModelPath, p.ConfigPath,
		image.Pt(640, 480), p.ScoreThreshold, p.NMSThreshold, p.TopK,
		int(gocv.NetBackendDefault), int(gocv.NetTargetCPU))

	return &YuNet{
		fd:   fd,
		cold: true,
	}, nil
}

// FindFaces returns the faces found on the frame.  Detections with any
// negative value are dropped as they lie partly outside the frame.
func (y *YuNet) FindFaces(frame faceveil.Frame) ([]faceveil.BoundingBox, error) {

	if frame.Mat.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	y.fd.SetInputSize(image.Pt(frame.Mat.Cols(), frame.Mat.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	y.fd.Detect(frame.Mat, &faces)

	boxes := make([]faceveil.BoundingBox, 0, faces.Rows())

	for r := 0; r < faces.Rows(); r++ {
		if faces.Cols() < yunetCols || hasNegative(faces, r) {
			continue
		}

		x := int(faces.GetFloatAt(r, 0))
		yy := int(faces.GetFloatAt(r, 1))
		w := int(faces.GetFloatAt(r, 2))
		h := int(faces.GetFloatAt(r, 3))

		boxes = append(boxes, faceveil.BoundingBox{X1: x, Y1: yy, X2: x + w, Y2: yy + h})
	}

	return boxes, nil
}

// hasNegative checks every value of a face row
func hasNegative(faces gocv.Mat, row int) bool {
	for c := 0; c < yunetCols; c++ {
		if faces.GetFloatAt(row, c) < 0 {
			return true
		}
	}
	return false
}

// Warmup runs detection once on a 640x480 noise frame
func (y *YuNet) Warmup() error {

	if !y.cold {
		return nil
	}

	if err := warmup(y); err != nil {
		return err
	}

	y.cold = false
	return nil
}

// Close releases the model
func (y *YuNet) Close() error {
	y.fd.Close()
	return nil
}

// warmup runs a detector over random noise to trigger lazy initialisation
// of the inference backend
func warmup(det faceveil.Detector) error {

	noise := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer noise.Close()

	gocv.RandU(&noise, gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(255, 255, 255, 0))

	if _, err := det.FindFaces(faceveil.NewFrame(-1, noise)); err != nil {
		return fmt.Errorf("warmup failed: %w", err)
	}

	return nil
}
