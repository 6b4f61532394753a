package render

import (
	"image"
	"testing"

	"github.com/swdee/go-faceveil"
)

func TestCircle(t *testing.T) {

	tests := []struct {
		name   string
		box    faceveil.BoundingBox
		center image.Point
		radius int
	}{
		{"square", faceveil.BoundingBox{X1: 10, Y1: 10, X2: 20, Y2: 20}, image.Pt(15, 15), 5},
		{"wide odd", faceveil.BoundingBox{X1: 0, Y1: 0, X2: 11, Y2: 4}, image.Pt(5, 2), 5},
		{"tall", faceveil.BoundingBox{X1: 3, Y1: 0, X2: 6, Y2: 21}, image.Pt(4, 10), 10},
		{"negative rounds down", faceveil.BoundingBox{X1: -3, Y1: -5, X2: 0, Y2: 0}, image.Pt(-2, -3), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center, radius := Circle(tt.box)

			if center != tt.center || radius != tt.radius {
				t.Errorf("Circle(%s) = %v r=%d, want %v r=%d",
					tt.box, center, radius, tt.center, tt.radius)
			}
		})
	}
}

func TestRectInclusive(t *testing.T) {

	r := Rect(faceveil.BoundingBox{X1: 2, Y1: 3, X2: 5, Y2: 9})

	if r != image.Rect(2, 3, 6, 10) {
		t.Errorf("unexpected rect %v", r)
	}
}

func TestParseShape(t *testing.T) {

	tests := []struct {
		in   string
		want Shape
		err  bool
	}{
		{"rect", ShapeRectangle, false},
		{"Rectangle", ShapeRectangle, false},
		{" circle ", ShapeCircle, false},
		{"hexagon", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseShape(tt.in)

		if (err != nil) != tt.err {
			t.Errorf("ParseShape(%q) error = %v", tt.in, err)
			continue
		}

		if got != tt.want {
			t.Errorf("ParseShape(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseColor(t *testing.T) {

	tests := []struct {
		in  string
		err bool
	}{
		{"green", false},
		{"#FF8000", false},
		{"00ff00", false},
		{"#ff00", true},
		{"mauve", true},
	}

	for _, tt := range tests {
		_, err := ParseColor(tt.in)

		if (err != nil) != tt.err {
			t.Errorf("ParseColor(%q) error = %v", tt.in, err)
		}
	}

	clr, _ := ParseColor("#FF8000")

	if clr.R != 0xff || clr.G != 0x80 || clr.B != 0 || clr.A != 0xff {
		t.Errorf("unexpected color %v", clr)
	}
}
