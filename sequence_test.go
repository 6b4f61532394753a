package faceveil

import (
	"reflect"
	"testing"
)

func TestNewSequenceSortsAndDedupes(t *testing.T) {

	seq := NewSequence([]DetectionResult{
		{FrameIndex: 4},
		{FrameIndex: 1, Boxes: []BoundingBox{{X1: 1}}},
		{FrameIndex: 0},
		{FrameIndex: 1, Boxes: []BoundingBox{{X1: 2}}},
	}, StatusComplete)

	if !reflect.DeepEqual(seq.Indices(), []int{0, 1, 4}) {
		t.Fatalf("indices = %v", seq.Indices())
	}

	res, _ := seq.Lookup(1)

	if len(res.Boxes) != 1 || res.Boxes[0].X1 != 2 {
		t.Errorf("duplicate should keep the later result, got %v", res.Boxes)
	}

	if seq.Contiguous() {
		t.Error("sequence with a gap reported contiguous")
	}

	if seq.LastIndex() != 4 {
		t.Errorf("last index = %d", seq.LastIndex())
	}
}

func TestSequenceRange(t *testing.T) {

	seq := NewSequence([]DetectionResult{
		{FrameIndex: 0}, {FrameIndex: 2}, {FrameIndex: 3}, {FrameIndex: 7},
	}, StatusIncomplete)

	tests := []struct {
		start, end int
		want       []int
	}{
		{0, 4, []int{0, 2, 3}},
		{1, 3, []int{2}},
		{4, 7, nil},
		{5, 100, []int{7}},
		{3, 3, nil},
	}

	for _, tt := range tests {
		var got []int

		for _, res := range seq.Range(tt.start, tt.end) {
			got = append(got, res.FrameIndex)
		}

		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Range(%d, %d) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestSequenceMerge(t *testing.T) {

	prior := NewSequence([]DetectionResult{
		{FrameIndex: 0}, {FrameIndex: 1, Boxes: []BoundingBox{{X1: 1}}},
	}, StatusIncomplete)

	next := NewSequence([]DetectionResult{
		{FrameIndex: 1, Boxes: []BoundingBox{{X1: 9}}}, {FrameIndex: 2},
	}, StatusComplete)

	merged := prior.Merge(next)

	if !reflect.DeepEqual(merged.Indices(), []int{0, 1, 2}) {
		t.Fatalf("indices = %v", merged.Indices())
	}

	if res, _ := merged.Lookup(1); res.Boxes[0].X1 != 9 {
		t.Errorf("merge should prefer the newer result")
	}

	if merged.Status != StatusComplete || !merged.Contiguous() {
		t.Errorf("unexpected merged sequence %s contiguous=%v", merged.Status, merged.Contiguous())
	}
}

func TestEmptySequence(t *testing.T) {

	seq := NewSequence(nil, StatusComplete)

	if seq.Len() != 0 || seq.LastIndex() != -1 || !seq.Contiguous() {
		t.Errorf("unexpected empty sequence state")
	}

	if seq.Has(0) {
		t.Error("empty sequence has frame 0")
	}
}
