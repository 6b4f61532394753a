package faceveil

import (
	"testing"
	"time"
)

func TestTimingsSummary(t *testing.T) {

	var tm Timings

	if s := tm.Summary(); s.Count != 0 {
		t.Fatalf("empty summary count = %d", s.Count)
	}

	for i := 1; i <= 100; i++ {
		tm.Add(time.Duration(i) * time.Millisecond)
	}

	s := tm.Summary()

	if s.Count != 100 {
		t.Errorf("count = %d", s.Count)
	}

	near := func(got, want time.Duration) bool {
		d := got - want
		return d > -time.Microsecond && d < time.Microsecond
	}

	if !near(s.Mean, 50500*time.Microsecond) {
		t.Errorf("mean = %s", s.Mean)
	}

	if !near(s.Max, 100*time.Millisecond) {
		t.Errorf("max = %s", s.Max)
	}

	if !near(s.P50, 50*time.Millisecond) {
		t.Errorf("p50 = %s", s.P50)
	}

	if !near(s.P95, 95*time.Millisecond) {
		t.Errorf("p95 = %s", s.P95)
	}

	if !near(s.Total, 5050*time.Millisecond) {
		t.Errorf("total = %s", s.Total)
	}

	tm.Reset()

	if tm.Summary().Count != 0 {
		t.Error("reset did not clear samples")
	}
}

func TestTimingsSingleSample(t *testing.T) {

	var tm Timings
	tm.Add(3 * time.Millisecond)

	if s := tm.Summary(); s.StdDev != 0 {
		t.Errorf("stddev of one sample = %s, want 0", s.StdDev)
	}
}
