package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Canvas is a drawing surface for face shapes
type Canvas interface {
	// Bounds of the drawable area
	Bounds() image.Rectangle
	// FillRect fills the half open rectangle r
	FillRect(r image.Rectangle, clr color.RGBA)
	// FillCircle fills a circle of the given radius around center
	FillCircle(center image.Point, radius int, clr color.RGBA)
}

// MatCanvas draws onto a gocv Mat
type MatCanvas struct {
	mat *gocv.Mat
}

// NewMatCanvas returns a canvas drawing on mat
func NewMatCanvas(mat *gocv.Mat) *MatCanvas {
	return &MatCanvas{mat: mat}
}

func (m *MatCanvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.mat.Cols(), m.mat.Rows())
}

func (m *MatCanvas) FillRect(r image.Rectangle, clr color.RGBA) {
	gocv.Rectangle(m.mat, r, clr, -1)
}

func (m *MatCanvas) FillCircle(center image.Point, radius int, clr color.RGBA) {
	gocv.Circle(m.mat, center, radius, clr, -1)
}
