package faceveil

import (
	"fmt"
	"strings"
	"sync"
)

// Policy defines how detector instances are shared between workers
type Policy int

const (
	// PolicyShared loads a single detector and gates every inference call
	// through a mutex.  Cheapest startup, most contention.
	PolicyShared Policy = iota
	// PolicyPerWorker loads one detector per worker, no gate is needed as
	// each worker owns its instance exclusively.
	PolicyPerWorker
)

// String returns the config name of the policy
func (p Policy) String() string {
	switch p {
	case PolicyShared:
		return "shared"
	case PolicyPerWorker:
		return "per-worker"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy returns the Policy for a config name of shared|per-worker
func ParsePolicy(name string) (Policy, error) {

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "shared", "":
		return PolicyShared, nil
	case "per-worker", "perworker":
		return PolicyPerWorker, nil
	}

	return 0, fmt.Errorf("%w: unknown detector policy %q", ErrInvalidConfig, name)
}

// Pool hands out detectors to workers according to the Policy
type Pool struct {
	// pool of per worker detectors
	detectors chan Detector
	// shared is the single gated detector used by PolicyShared
	shared Detector
	policy Policy
	// size of pool
	size   int
	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool of detectors for the given number of workers.  Every
// detector is created up front so model loading errors surface before any
// work is dispatched.
func NewPool(policy Policy, workers int, factory DetectorFactory) (*Pool, error) {

	if workers < 1 {
		return nil, fmt.Errorf("%w: pool size must be at least 1, got %d",
			ErrInvalidConfig, workers)
	}

	p := &Pool{
		policy: policy,
		size:   workers,
	}

	switch policy {
	case PolicyShared:
		det, err := factory()

		if err != nil {
			return nil, fmt.Errorf("error creating shared detector: %w", err)
		}

		p.shared = Lock(det)

	case PolicyPerWorker:
		p.detectors = make(chan Detector, workers)

		for i := 0; i < workers; i++ {
			det, err := factory()

			if err != nil {
				// close any instances that may have been created before
				// receiving the error
				p.Close()
				return nil, fmt.Errorf("error creating detector %d: %w", i, err)
			}

			// attach to pool
			p.Return(det)
		}

	default:
		return nil, fmt.Errorf("%w: unknown detector policy %d", ErrInvalidConfig, policy)
	}

	return p, nil
}

// Policy returns the sharing policy of the pool
func (p *Pool) Policy() Policy {
	return p.policy
}

// Size returns the number of workers the pool was created for
func (p *Pool) Size() int {
	return p.size
}

// Get a detector from the pool.  With PolicyShared every caller receives the
// same gated instance, with PolicyPerWorker the call blocks until an
// instance is free.
func (p *Pool) Get() Detector {

	if p.policy == PolicyShared {
		return p.shared
	}

	return <-p.detectors
}

// Return a detector to the pool
func (p *Pool) Return(det Detector) {

	if p.policy == PolicyShared {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		// a worker outlived the pool, release its detector here
		_ = det.Close()
		return
	}

	select {
	case p.detectors <- det:
	default:
		// pool is full
	}
}

// Warmup runs the warmup inference on every detector in the pool
func (p *Pool) Warmup() error {

	if p.policy == PolicyShared {
		return p.shared.Warmup()
	}

	dets := make([]Detector, 0, p.size)
	defer func() {
		for _, det := range dets {
			p.Return(det)
		}
	}()

	for i := 0; i < p.size; i++ {
		det := p.Get()
		dets = append(dets, det)

		if err := det.Warmup(); err != nil {
			return fmt.Errorf("error warming up detector %d: %w", i, err)
		}
	}

	return nil
}

// Close the pool and all detectors in it.  Detectors still held by a worker
// are closed when they are returned.
func (p *Pool) Close() {

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true

	if p.policy == PolicyShared {
		if p.shared != nil {
			_ = p.shared.Close()
		}
		return
	}

	// close channel
	close(p.detectors)

	// close all detectors
	for next := range p.detectors {
		_ = next.Close()
	}
}
