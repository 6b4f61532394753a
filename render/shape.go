package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/swdee/go-faceveil"
)

// Shape is the filled shape drawn over each face
type Shape int

const (
	ShapeRectangle Shape = iota
	ShapeCircle
)

// String returns the config name of the shape
func (s Shape) String() string {
	switch s {
	case ShapeRectangle:
		return "rect"
	case ShapeCircle:
		return "circle"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// ParseShape returns the Shape for a config name of rect|circle
func ParseShape(name string) (Shape, error) {

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rect", "rectangle", "":
		return ShapeRectangle, nil
	case "circle":
		return ShapeCircle, nil
	}

	return 0, fmt.Errorf("unknown shape %q", name)
}

// Circle returns the circle covering a box.  The center is the box midpoint
// and the radius half of the longest side, both rounded down.
func Circle(b faceveil.BoundingBox) (image.Point, int) {

	center := image.Pt(floorDiv(b.X1+b.X2, 2), floorDiv(b.Y1+b.Y2, 2))
	radius := floorDiv(max(abs(b.X1-b.X2), abs(b.Y1-b.Y2)), 2)

	return center, radius
}

// Rect returns the pixel area of a box, both corners are inside the box
func Rect(b faceveil.BoundingBox) image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2+1, b.Y2+1)
}

// floorDiv divides rounding towards negative infinity
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
