package faceveil

import (
	"sort"
)

// Status describes how a Sequence came to be
type Status int

const (
	// StatusComplete means every frame of the source has a result
	StatusComplete Status = iota
	// StatusCancelled means the run was interrupted
	StatusCancelled
	// StatusSourceFailed means the frame source failed mid stream
	StatusSourceFailed
	// StatusIncomplete means results are missing for some other reason, such
	// as a partial sequence restored from disk
	StatusIncomplete
)

// String returns a readable name for the status
func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusCancelled:
		return "cancelled"
	case StatusSourceFailed:
		return "source failed"
	case StatusIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// Sequence is the ordered set of detection results for a video.  Results
// are sorted ascending by FrameIndex and hold no duplicate indices.  A
// partial Sequence only holds the indices that were actually processed.
type Sequence struct {
	Results []DetectionResult
	Status  Status
	// Err is the cause of a partial sequence
	Err error
}

// NewSequence sorts the given results and returns them as a Sequence.
// Duplicate indices keep the last result given.
func NewSequence(results []DetectionResult, status Status) *Sequence {

	sorted := make([]DetectionResult, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FrameIndex < sorted[j].FrameIndex
	})

	// remove duplicates, keeping the later entry
	out := sorted[:0]

	for i, res := range sorted {
		if i+1 < len(sorted) && sorted[i+1].FrameIndex == res.FrameIndex {
			continue
		}
		out = append(out, res)
	}

	return &Sequence{
		Results: out,
		Status:  status,
	}
}

// Partial returns true if the sequence does not cover every frame
func (s *Sequence) Partial() bool {
	return s.Status != StatusComplete
}

// Len returns the number of results held
func (s *Sequence) Len() int {
	return len(s.Results)
}

// Indices returns the frame indices held, in ascending order
func (s *Sequence) Indices() []int {

	idx := make([]int, len(s.Results))

	for i, res := range s.Results {
		idx[i] = res.FrameIndex
	}

	return idx
}

// search returns the position of the first result with an index >= frame
func (s *Sequence) search(frame int) int {
	return sort.Search(len(s.Results), func(i int) bool {
		return s.Results[i].FrameIndex >= frame
	})
}

// Lookup returns the result for the given frame index
func (s *Sequence) Lookup(frame int) (DetectionResult, bool) {

	i := s.search(frame)

	if i < len(s.Results) && s.Results[i].FrameIndex == frame {
		return s.Results[i], true
	}

	return DetectionResult{}, false
}

// Has returns true if a result exists for the given frame index
func (s *Sequence) Has(frame int) bool {
	_, ok := s.Lookup(frame)
	return ok
}

// Range returns the results whose frame index lies in the half open range
// [start, end).  The returned slice shares memory with the sequence.
func (s *Sequence) Range(start, end int) []DetectionResult {

	if end <= start {
		return nil
	}

	return s.Results[s.search(start):s.search(end)]
}

// Contiguous returns true if the indices held are exactly 0..Len()-1
func (s *Sequence) Contiguous() bool {

	for i, res := range s.Results {
		if res.FrameIndex != i {
			return false
		}
	}

	return true
}

// LastIndex returns the highest frame index held, or -1 when empty
func (s *Sequence) LastIndex() int {

	if len(s.Results) == 0 {
		return -1
	}

	return s.Results[len(s.Results)-1].FrameIndex
}

// Merge returns the union of both sequences, where both hold the same index
// the result from other is kept.  The status is taken from other.
func (s *Sequence) Merge(other *Sequence) *Sequence {

	all := make([]DetectionResult, 0, len(s.Results)+len(other.Results))
	all = append(all, s.Results...)
	all = append(all, other.Results...)

	merged := NewSequence(all, other.Status)
	merged.Err = other.Err

	return merged
}
