package faceveil

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
)

// dispatchReport is what the dispatcher hands back once it has stopped
type dispatchReport struct {
	// seen is the number of frames read from the source, including skipped
	seen int
	// dispatched is the number of frames placed on the queue
	dispatched int
	// err is set when the source failed
	err error
}

// dispatcher reads frames from the source and places them on the work queue
type dispatcher struct {
	src       FrameSource
	queue     chan<- WorkItem
	workers   int
	batchSize int
	maxFrames int
	// skip holds frame indices that already have a result
	skip map[int]bool
	log  zerolog.Logger
}

// run enqueues every frame in source order followed by one sentinel per
// worker.  It always closes the source before returning.
func (d *dispatcher) run(ctx context.Context) (rep dispatchReport) {

	defer func() {
		if err := d.src.Close(); err != nil {
			d.log.Warn().Err(err).Msg("error closing frame source")
		}
	}()

	batch := newBatcher(d.batchSize)

	// flush sends the pending batch, false means the context was cancelled
	flush := func() bool {
		if batch.Len() == 0 {
			return true
		}

		item := batch.Take()
		n := len(item.Frames)

		if !d.send(ctx, item) {
			item.Close()
			return false
		}

		rep.dispatched += n
		return true
	}

	for {
		if ctx.Err() != nil {
			batch.Take().Close()
			d.log.Debug().Int("dispatched", rep.dispatched).Msg("dispatcher cancelled")
			return rep
		}

		if d.maxFrames > 0 && rep.seen >= d.maxFrames {
			break
		}

		frame, err := d.src.Next()

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			rep.err = &SourceError{Frame: rep.seen, Err: err}
			d.log.Error().Err(err).Int("frame", rep.seen).
				Msg("frame source failed, draining workers")
			break
		}

		rep.seen++

		if d.skip[frame.Index] {
			_ = frame.Close()
			continue
		}

		if batch.Add(frame) && !flush() {
			return rep
		}
	}

	if !flush() {
		return rep
	}

	// add a sentinel for each worker
	for i := 0; i < d.workers; i++ {
		if !d.send(ctx, sentinel()) {
			return rep
		}
	}

	d.log.Debug().Int("seen", rep.seen).Int("dispatched", rep.dispatched).
		Msg("dispatcher finished")

	return rep
}

// send places the item on the queue, blocking while the queue is full.  It
// returns false if the context was cancelled first.
func (d *dispatcher) send(ctx context.Context, item WorkItem) bool {

	// do not race a ready queue against a cancelled context
	if ctx.Err() != nil {
		return false
	}

	select {
	case d.queue <- item:
		return true
	case <-ctx.Done():
		return false
	}
}
