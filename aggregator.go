package faceveil

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// aggregator collects the results pushed by the workers and restores frame
// order
type aggregator struct {
	results <-chan DetectionResult
	// drainTimeout is how long to wait for in-flight workers once the
	// context has been cancelled
	drainTimeout time.Duration
	log          zerolog.Logger
}

// collect drains the results channel until it is closed, which happens once
// every worker has stopped.  After cancellation it waits at most
// drainTimeout for the workers, then keeps whatever has arrived.  The
// returned bool reports if the barrier was reached.
func (a *aggregator) collect(ctx context.Context, sizeHint int) ([]DetectionResult, bool) {

	out := make([]DetectionResult, 0, sizeHint)
	done := ctx.Done()

	var timeout <-chan time.Time

	for {
		select {
		case res, ok := <-a.results:
			if !ok {
				return out, true
			}
			out = append(out, res)

		case <-done:
			done = nil
			timer := time.NewTimer(a.drainTimeout)
			defer timer.Stop()
			timeout = timer.C
			a.log.Debug().Int("collected", len(out)).Dur("timeout", a.drainTimeout).
				Msg("cancelled, draining in-flight results")

		case <-timeout:
			// keep results already buffered, abandon workers still running
			for {
				select {
				case res, ok := <-a.results:
					if !ok {
						return out, true
					}
					out = append(out, res)
				default:
					a.log.Warn().Int("collected", len(out)).
						Msg("workers did not stop in time, abandoning them")
					return out, false
				}
			}
		}
	}
}

// assemble orders the collected results and tags the sequence with how the
// run ended
func (a *aggregator) assemble(ctx context.Context, results []DetectionResult,
	barrier bool, rep dispatchReport) *Sequence {

	seq := NewSequence(results, StatusComplete)

	if dups := len(results) - seq.Len(); dups > 0 {
		a.log.Warn().Int("duplicates", dups).Msg("dropped duplicate frame results")
	}

	switch {
	case ctx.Err() != nil:
		seq.Status = StatusCancelled
		seq.Err = fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))

	case rep.err != nil:
		seq.Status = StatusSourceFailed
		seq.Err = rep.err

	case !barrier || seq.Len() != rep.dispatched:
		seq.Status = StatusIncomplete
		seq.Err = fmt.Errorf("collected %d results for %d dispatched frames",
			seq.Len(), rep.dispatched)
	}

	return seq
}
