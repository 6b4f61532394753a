package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/vector"
)

// kappa places the control points of a cubic bezier approximating a
// quarter circle
const kappa = 0.5522847498

// ImageCanvas draws onto an RGBA image without needing OpenCV
type ImageCanvas struct {
	img *image.RGBA
}

// NewImageCanvas returns a canvas drawing on img
func NewImageCanvas(img *image.RGBA) *ImageCanvas {
	return &ImageCanvas{img: img}
}

// NewBlankCanvas returns a canvas over a new black image of the given size
func NewBlankCanvas(width, height int) *ImageCanvas {

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(Black), image.Point{}, draw.Src)

	return NewImageCanvas(img)
}

// Image returns the image drawn on
func (c *ImageCanvas) Image() *image.RGBA {
	return c.img
}

func (c *ImageCanvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

func (c *ImageCanvas) FillRect(r image.Rectangle, clr color.RGBA) {
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), image.NewUniform(clr),
		image.Point{}, draw.Src)
}

func (c *ImageCanvas) FillCircle(center image.Point, radius int, clr color.RGBA) {

	b := c.img.Bounds()

	if radius < 0 || b.Empty() {
		return
	}

	// pixel centres lie on the half coordinates
	cx := float32(center.X-b.Min.X) + 0.5
	cy := float32(center.Y-b.Min.Y) + 0.5
	r := float32(radius) + 0.5
	k := r * kappa

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()

	z.Draw(c.img, b, image.NewUniform(clr), image.Point{})
}
