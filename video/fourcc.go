package video

import (
	"fmt"
	"strings"
)

// DecodeFourCC converts the FOURCC capture property into its four character
// code.  Unprintable codes are returned in hex.
func DecodeFourCC(v float64) string {

	code := uint32(int64(v))

	if code == 0 {
		return ""
	}

	b := []byte{
		byte(code & 0xff),
		byte((code >> 8) & 0xff),
		byte((code >> 16) & 0xff),
		byte((code >> 24) & 0xff),
	}

	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", code)
		}
	}

	return string(b)
}

// ValidFourCC checks that a codec is a four character code usable by the
// video writer
func ValidFourCC(codec string) error {

	if len(codec) != 4 {
		return fmt.Errorf("codec %q must be four characters", codec)
	}

	if strings.ContainsFunc(codec, func(r rune) bool { return r < 0x20 || r > 0x7e }) {
		return fmt.Errorf("codec %q contains unprintable characters", codec)
	}

	return nil
}
