//go:build rknn

package detector

import (
	"fmt"

	"github.com/swdee/go-faceveil"
	"github.com/swdee/go-rknnlite"
	"github.com/swdee/go-rknnlite/postprocess"
	"github.com/swdee/go-rknnlite/preprocess"
	"github.com/swdee/go-rknnlite/render"
	"gocv.io/x/gocv"
)

func init() {
	register("rknn", func(p Params) (faceveil.Detector, error) { return NewRetinaFace(p) })
}

// RetinaFace detects faces on the Rockchip NPU with a compiled RetinaFace
// model
type RetinaFace struct {
	rt        *rknnlite.Runtime
	processor *postprocess.RetinaFace
	// resizer is recreated when the frame size changes
	resizer *preprocess.Resizer
	// model input width and height
	inW, inH int
	rgb      gocv.Mat
	crop     gocv.Mat
	cold     bool
}

// NewRetinaFace loads the RKNN model, the runtime picks the NPU core
func NewRetinaFace(p Params) (*RetinaFace, error) {

	rt, err := rknnlite.NewRuntime(p.ModelPath, rknnlite.NPUCoreAuto)

	if err != nil {
		return nil, fmt.Errorf("error initializing RKNN runtime: %w", err)
	}

	params := postprocess.WiderFaceParams()

	if p.ScoreThreshold > 0 {
		params.ConfThreshold = p.ScoreThreshold
	}

	if p.NMSThreshold > 0 {
		params.NMSThreshold = p.NMSThreshold
	}

	dims := rt.InputAttrs()[0].Dims

	return &RetinaFace{
		rt:        rt,
		processor: postprocess.NewRetinaFace(params),
		inW:       int(dims[1]),
		inH:       int(dims[2]),
		rgb:       gocv.NewMat(),
		crop:      gocv.NewMat(),
		cold:      true,
	}, nil
}

// FindFaces letterboxes the frame to the model input size and returns the
// faces scaled back to frame coordinates
func (r *RetinaFace) FindFaces(frame faceveil.Frame) ([]faceveil.BoundingBox, error) {

	if frame.Mat.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	w, h := frame.Mat.Cols(), frame.Mat.Rows()

	if r.resizer == nil || r.resizer.SrcWidth() != w || r.resizer.SrcHeight() != h {
		if r.resizer != nil {
			r.resizer.Close()
		}
		r.resizer = preprocess.NewResizer(w, h, r.inW, r.inH)
	}

	gocv.CvtColor(frame.Mat, &r.rgb, gocv.ColorBGRToRGB)
	r.resizer.LetterBoxResize(r.rgb, &r.crop, render.Black)

	outputs, err := r.rt.Inference([]gocv.Mat{r.crop})

	if err != nil {
		return nil, fmt.Errorf("runtime inferencing failed: %w", err)
	}

	defer outputs.Free()

	faces := r.processor.DetectFaces(outputs, r.resizer).GetDetectResults()
	boxes := make([]faceveil.BoundingBox, 0, len(faces))

	for _, f := range faces {
		boxes = append(boxes, faceveil.NewBoundingBox(
			f.Box.Left, f.Box.Top, f.Box.Right, f.Box.Bottom))
	}

	return boxes, nil
}

// Warmup runs detection once on a 640x480 noise frame
func (r *RetinaFace) Warmup() error {

	if !r.cold {
		return nil
	}

	if err := warmup(r); err != nil {
		return err
	}

	r.cold = false
	return nil
}

// Close releases the runtime and buffers
func (r *RetinaFace) Close() error {

	if r.resizer != nil {
		r.resizer.Close()
	}

	r.rgb.Close()
	r.crop.Close()

	return r.rt.Close()
}
