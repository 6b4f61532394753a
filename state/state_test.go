package state

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/swdee/go-faceveil"
)

func sampleSequence(status faceveil.Status) *faceveil.Sequence {
	return faceveil.NewSequence([]faceveil.DetectionResult{
		{FrameIndex: 0, Boxes: []faceveil.BoundingBox{{X1: 1, Y1: 2, X2: 30, Y2: 40}}},
		{FrameIndex: 1, Boxes: []faceveil.BoundingBox{}},
		{FrameIndex: 2, Boxes: []faceveil.BoundingBox{
			{X1: 0, Y1: 0, X2: 10, Y2: 10},
			{X1: -4, Y1: 5, X2: 640, Y2: 480},
		}},
	}, status)
}

func TestRoundTrip(t *testing.T) {

	seq := sampleSequence(faceveil.StatusComplete)

	var buf bytes.Buffer

	if err := Write(&buf, seq); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := Read(&buf)

	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if got.Status != faceveil.StatusComplete {
		t.Errorf("status = %s, want complete", got.Status)
	}

	if !reflect.DeepEqual(got.Results, seq.Results) {
		t.Errorf("results differ\n got %v\nwant %v", got.Results, seq.Results)
	}
}

func TestPartialFlag(t *testing.T) {

	seq := sampleSequence(faceveil.StatusCancelled)

	var buf bytes.Buffer

	if err := Write(&buf, seq); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := Read(&buf)

	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if !got.Partial() || got.Status != faceveil.StatusIncomplete {
		t.Errorf("expected partial sequence, got status %s", got.Status)
	}
}

func TestReadCorrupt(t *testing.T) {

	var buf bytes.Buffer

	if err := Write(&buf, sampleSequence(faceveil.StatusComplete)); err != nil {
		t.Fatal(err)
	}

	valid := buf.Bytes()

	badMagic := append([]byte("XXXX"), valid[4:]...)
	trailing := append(append([]byte{}, valid...), 0)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", valid[:6]},
		{"truncated record", valid[:len(valid)-3]},
		{"bad magic", badMagic},
		{"trailing data", trailing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.data))

			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {

	path := filepath.Join(t.TempDir(), "clip.bboxes.bin")
	seq := sampleSequence(faceveil.StatusComplete)

	if err := Save(path, seq); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok := Load(path)

	if !ok {
		t.Fatal("expected state to load")
	}

	if !reflect.DeepEqual(got.Results, seq.Results) {
		t.Errorf("results differ after load")
	}

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))

	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 {
		t.Errorf("expected only the state file, found %d entries", len(entries))
	}
}

func TestLoadAbsent(t *testing.T) {

	dir := t.TempDir()

	if _, ok := Load(filepath.Join(dir, "missing.bboxes.bin")); ok {
		t.Error("missing file should load as absent")
	}

	truncated := filepath.Join(dir, "truncated.bboxes.bin")

	var buf bytes.Buffer

	if err := Write(&buf, sampleSequence(faceveil.StatusComplete)); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(truncated, buf.Bytes()[:buf.Len()-1], 0644); err != nil {
		t.Fatal(err)
	}

	if _, ok := Load(truncated); ok {
		t.Error("truncated file should load as absent")
	}
}

func TestPath(t *testing.T) {

	tests := []struct {
		in   string
		want string
	}{
		{"clip.mp4", "clip.bboxes.bin"},
		{"/data/videos/a.b.mkv", "/data/videos/a.b.bboxes.bin"},
		{"noext", "noext.bboxes.bin"},
	}

	for _, tt := range tests {
		if got := Path(tt.in); got != tt.want {
			t.Errorf("Path(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
