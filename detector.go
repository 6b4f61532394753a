package faceveil

import (
	"fmt"
	"sync"
)

// Detector finds faces on a frame.  Implementations are not required to be
// safe for concurrent use, the Pool decides how instances are shared.
type Detector interface {
	// FindFaces returns the bounding boxes of faces found on the frame
	FindFaces(frame Frame) ([]BoundingBox, error)
	// Warmup runs a single dummy inference to force lazy initialisation.
	// Calling it again after a successful warmup does nothing.
	Warmup() error
	// Close releases the resources held by the detector
	Close() error
}

// DetectorFactory creates a new Detector instance
type DetectorFactory func() (Detector, error)

// lockedDetector serializes every call made to the wrapped Detector
type lockedDetector struct {
	mu  sync.Mutex
	det Detector
}

// Lock wraps a Detector so concurrent callers take turns using it
func Lock(det Detector) Detector {
	if _, ok := det.(*lockedDetector); ok {
		return det
	}
	return &lockedDetector{det: det}
}

func (l *lockedDetector) FindFaces(frame Frame) ([]BoundingBox, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.det.FindFaces(frame)
}

func (l *lockedDetector) Warmup() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.det.Warmup()
}

func (l *lockedDetector) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.det.Close()
}

// safeFindFaces runs detection and converts a panic raised by the detector
// into an error
func safeFindFaces(det Detector, frame Frame) (boxes []BoundingBox, err error) {

	defer func() {
		if r := recover(); r != nil {
			boxes = nil
			err = fmt.Errorf("detector panic: %v", r)
		}
	}()

	return det.FindFaces(frame)
}
