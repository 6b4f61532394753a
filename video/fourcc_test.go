package video

import (
	"testing"
)

func TestDecodeFourCC(t *testing.T) {

	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"mp4v", float64('m' | 'p'<<8 | '4'<<16 | 'v'<<24), "mp4v"},
		{"avc1", float64('a' | 'v'<<8 | 'c'<<16 | '1'<<24), "avc1"},
		{"unset", 0, ""},
		{"unprintable", 1, "0x00000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeFourCC(tt.in); got != tt.want {
				t.Errorf("DecodeFourCC(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidFourCC(t *testing.T) {

	tests := []struct {
		in  string
		err bool
	}{
		{"mp4v", false},
		{"MJPG", false},
		{"h264x", true},
		{"", true},
		{"ab\x01c", true},
	}

	for _, tt := range tests {
		if err := ValidFourCC(tt.in); (err != nil) != tt.err {
			t.Errorf("ValidFourCC(%q) error = %v", tt.in, err)
		}
	}
}
