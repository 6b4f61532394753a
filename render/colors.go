package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
)

// namedColors are the colors that can be selected by name
var namedColors = map[string]color.RGBA{
	"black": Black,
	"white": White,
	"green": Green,
	"red":   Red,
	"blue":  Blue,
}

// ParseColor returns the color for a name such as "green" or a hex value in
// the form "#00ff00"
func ParseColor(s string) (color.RGBA, error) {

	s = strings.ToLower(strings.TrimSpace(s))

	if clr, ok := namedColors[s]; ok {
		return clr, nil
	}

	hex := strings.TrimPrefix(s, "#")

	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)

	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}
