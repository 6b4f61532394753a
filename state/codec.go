package state

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/swdee/go-faceveil"
)

const (
	// magic identifies a detection results file
	magic = "FVBB"
	// version of the record layout
	version uint16 = 1
	// flagPartial marks a sequence that does not cover every frame
	flagPartial uint16 = 1 << 0
	// maxBoxes is the upper bound on boxes per frame accepted when reading
	maxBoxes = 1 << 16
)

var (
	// ErrCorrupt is returned when a file is not a valid detection results file
	ErrCorrupt = errors.New("corrupt detection results")
	// ErrVersion is returned for a file written by an unsupported version
	ErrVersion = errors.New("unsupported detection results version")
)

// header is the fixed size start of the file
type header struct {
	Magic   [4]byte
	Version uint16
	Flags   uint16
	Count   uint32
}

// recordHead precedes the boxes of each frame
type recordHead struct {
	FrameIndex uint32
	BoxCount   uint32
}

// box is the stored form of a BoundingBox
type box struct {
	X1, Y1, X2, Y2 int32
}

// Write encodes the sequence in little endian byte order
func Write(w io.Writer, seq *faceveil.Sequence) error {

	bw := bufio.NewWriter(w)

	h := header{
		Version: version,
		Count:   uint32(seq.Len()),
	}
	copy(h.Magic[:], magic)

	if seq.Partial() {
		h.Flags |= flagPartial
	}

	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	for _, res := range seq.Results {
		if res.FrameIndex < 0 {
			return fmt.Errorf("negative frame index %d", res.FrameIndex)
		}

		rh := recordHead{
			FrameIndex: uint32(res.FrameIndex),
			BoxCount:   uint32(len(res.Boxes)),
		}

		if err := binary.Write(bw, binary.LittleEndian, rh); err != nil {
			return fmt.Errorf("error writing frame %d: %w", res.FrameIndex, err)
		}

		boxes := make([]box, len(res.Boxes))

		for i, b := range res.Boxes {
			boxes[i] = box{int32(b.X1), int32(b.Y1), int32(b.X2), int32(b.Y2)}
		}

		if err := binary.Write(bw, binary.LittleEndian, boxes); err != nil {
			return fmt.Errorf("error writing frame %d: %w", res.FrameIndex, err)
		}
	}

	return bw.Flush()
}

// Read decodes a sequence written by Write.  A file flagged partial is
// restored with StatusIncomplete.
func Read(r io.Reader) (*faceveil.Sequence, error) {

	br := bufio.NewReader(r)

	var h header

	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrCorrupt, err)
	}

	if string(h.Magic[:]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, h.Magic[:])
	}

	if h.Version != version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}

	results := make([]faceveil.DetectionResult, 0, min(int(h.Count), 1<<20))
	last := -1

	for i := uint32(0); i < h.Count; i++ {
		var rh recordHead

		if err := binary.Read(br, binary.LittleEndian, &rh); err != nil {
			return nil, fmt.Errorf("%w: reading record %d: %w", ErrCorrupt, i, err)
		}

		idx := int(rh.FrameIndex)

		if idx <= last {
			return nil, fmt.Errorf("%w: frame %d out of order", ErrCorrupt, idx)
		}

		if rh.BoxCount > maxBoxes {
			return nil, fmt.Errorf("%w: frame %d has %d boxes", ErrCorrupt, idx, rh.BoxCount)
		}

		boxes := make([]box, rh.BoxCount)

		if err := binary.Read(br, binary.LittleEndian, boxes); err != nil {
			return nil, fmt.Errorf("%w: reading frame %d boxes: %w", ErrCorrupt, idx, err)
		}

		res := faceveil.DetectionResult{
			FrameIndex: idx,
			Boxes:      make([]faceveil.BoundingBox, len(boxes)),
		}

		for j, b := range boxes {
			res.Boxes[j] = faceveil.BoundingBox{
				X1: int(b.X1), Y1: int(b.Y1), X2: int(b.X2), Y2: int(b.Y2),
			}
		}

		results = append(results, res)
		last = idx
	}

	// anything after the last record means the count is wrong
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after %d records", ErrCorrupt, h.Count)
	}

	status := faceveil.StatusComplete

	if h.Flags&flagPartial != 0 {
		status = faceveil.StatusIncomplete
	}

	return faceveil.NewSequence(results, status), nil
}
