package faceveil

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Timings records the inference time taken for each frame
type Timings struct {
	mu sync.Mutex
	// samples are durations in milliseconds
	samples []float64
}

// TimingSummary holds statistics of the recorded inference times
type TimingSummary struct {
	Count  int
	Mean   time.Duration
	StdDev time.Duration
	P50    time.Duration
	P95    time.Duration
	Max    time.Duration
	Total  time.Duration
}

// String returns a single line summary
func (s TimingSummary) String() string {
	return fmt.Sprintf("count=%d mean=%s stddev=%s p50=%s p95=%s max=%s",
		s.Count, s.Mean, s.StdDev, s.P50, s.P95, s.Max)
}

// Add records a single inference duration
func (t *Timings) Add(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, float64(d)/float64(time.Millisecond))
}

// Reset clears all recorded samples
func (t *Timings) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = t.samples[:0]
}

// Summary calculates statistics over the samples recorded so far
func (t *Timings) Summary() TimingSummary {

	t.mu.Lock()
	x := make([]float64, len(t.samples))
	copy(x, t.samples)
	t.mu.Unlock()

	if len(x) == 0 {
		return TimingSummary{}
	}

	// quantile requires sorted input
	sort.Float64s(x)

	mean, std := stat.MeanStdDev(x, nil)

	if len(x) == 1 {
		// sample stddev of a single value is NaN
		std = 0
	}

	return TimingSummary{
		Count:  len(x),
		Mean:   ms(mean),
		StdDev: ms(std),
		P50:    ms(stat.Quantile(0.5, stat.Empirical, x, nil)),
		P95:    ms(stat.Quantile(0.95, stat.Empirical, x, nil)),
		Max:    ms(floats.Max(x)),
		Total:  ms(floats.Sum(x)),
	}
}

// ms converts float milliseconds back to a Duration
func ms(v float64) time.Duration {
	return time.Duration(v * float64(time.Millisecond))
}
