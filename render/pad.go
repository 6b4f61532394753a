package render

import (
	"image"

	clipper "github.com/ctessum/go.clipper"
	"github.com/swdee/go-faceveil"
)

// Pad grows the box by padding pixels on every side and clamps it to bounds
func Pad(b faceveil.BoundingBox, padding int, bounds image.Rectangle) faceveil.BoundingBox {

	if padding > 0 {
		b = offset(b, padding)
	}

	return clampBox(b, bounds)
}

// offset the box outline, a miter join keeps the corners square
func offset(b faceveil.BoundingBox, padding int) faceveil.BoundingBox {

	path := clipper.Path{
		&clipper.IntPoint{X: clipper.CInt(b.X1), Y: clipper.CInt(b.Y1)},
		&clipper.IntPoint{X: clipper.CInt(b.X2), Y: clipper.CInt(b.Y1)},
		&clipper.IntPoint{X: clipper.CInt(b.X2), Y: clipper.CInt(b.Y2)},
		&clipper.IntPoint{X: clipper.CInt(b.X1), Y: clipper.CInt(b.Y2)},
	}

	co := clipper.NewClipperOffset()
	co.MiterLimit = 2
	co.AddPath(path, clipper.JtMiter, clipper.EtClosedPolygon)

	solution := co.Execute(float64(padding))

	if len(solution) == 0 || len(solution[0]) == 0 {
		return b
	}

	first := solution[0][0]
	out := faceveil.BoundingBox{
		X1: int(first.X), Y1: int(first.Y),
		X2: int(first.X), Y2: int(first.Y),
	}

	for _, poly := range solution {
		for _, pt := range poly {
			out.X1 = min(out.X1, int(pt.X))
			out.Y1 = min(out.Y1, int(pt.Y))
			out.X2 = max(out.X2, int(pt.X))
			out.Y2 = max(out.Y2, int(pt.Y))
		}
	}

	return out
}

// clampBox limits the box corners to pixels inside bounds
func clampBox(b faceveil.BoundingBox, bounds image.Rectangle) faceveil.BoundingBox {

	if bounds.Empty() {
		return b
	}

	clampInt := func(v, lo, hi int) int {
		return max(lo, min(v, hi))
	}

	return faceveil.BoundingBox{
		X1: clampInt(b.X1, bounds.Min.X, bounds.Max.X-1),
		Y1: clampInt(b.Y1, bounds.Min.Y, bounds.Max.Y-1),
		X2: clampInt(b.X2, bounds.Min.X, bounds.Max.X-1),
		Y2: clampInt(b.Y2, bounds.Min.Y, bounds.Max.Y-1),
	}
}
