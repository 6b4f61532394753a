package faceveil

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
)

// fakeSource produces frames without pixel data
type fakeSource struct {
	n int
	// failAt is the frame index that fails to read, -1 for never
	failAt int
	next   int
	closes atomic.Int32
}

func newFakeSource(n int) *fakeSource {
	return &fakeSource{n: n, failAt: -1}
}

func (s *fakeSource) Metadata() VideoMetadata {
	return NewVideoMetadata(s.n, 64, 48, 25, "mp4v")
}

func (s *fakeSource) Next() (Frame, error) {

	if s.next == s.failAt {
		return Frame{}, errors.New("decode error")
	}

	if s.next >= s.n {
		return Frame{}, io.EOF
	}

	f := NewFrame(s.next, gocv.Mat{})
	s.next++

	return f, nil
}

func (s *fakeSource) Close() error {
	s.closes.Add(1)
	return nil
}

// fakeDetector returns one box per frame whose X1 is the frame index
type fakeDetector struct {
	delay   time.Duration
	errOn   map[int]bool
	panicOn map[int]bool
	// calls is shared by every instance made from the same factory
	calls   *atomic.Int64
	onCall  func(n int64)
	warmups atomic.Int32
	closed  atomic.Bool
	mu      sync.Mutex
	seen    []int
}

func (d *fakeDetector) FindFaces(frame Frame) ([]BoundingBox, error) {

	n := d.calls.Add(1)

	d.mu.Lock()
	d.seen = append(d.seen, frame.Index)
	d.mu.Unlock()

	if d.onCall != nil {
		d.onCall(n)
	}

	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	if d.panicOn[frame.Index] {
		panic(fmt.Sprintf("bad frame %d", frame.Index))
	}

	if d.errOn[frame.Index] {
		return nil, fmt.Errorf("inference failed on %d", frame.Index)
	}

	return []BoundingBox{{X1: frame.Index, Y1: 0, X2: frame.Index + 10, Y2: 10}}, nil
}

func (d *fakeDetector) Warmup() error {
	d.warmups.Add(1)
	return nil
}

func (d *fakeDetector) Close() error {
	d.closed.Store(true)
	return nil
}

// fakeFactory records every detector it creates
type fakeFactory struct {
	mu        sync.Mutex
	template  fakeDetector
	calls     atomic.Int64
	created   []*fakeDetector
	failAfter int
}

func (f *fakeFactory) New() (Detector, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAfter > 0 && len(f.created) >= f.failAfter {
		return nil, errors.New("out of memory")
	}

	det := &fakeDetector{
		delay:   f.template.delay,
		errOn:   f.template.errOn,
		panicOn: f.template.panicOn,
		onCall:  f.template.onCall,
		calls:   &f.calls,
	}

	f.created = append(f.created, det)

	return det, nil
}

// seen returns every frame index passed to any detector
func (f *fakeFactory) seen() map[int]int {

	f.mu.Lock()
	defer f.mu.Unlock()

	out := map[int]int{}

	for _, det := range f.created {
		det.mu.Lock()
		for _, idx := range det.seen {
			out[idx]++
		}
		det.mu.Unlock()
	}

	return out
}
