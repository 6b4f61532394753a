package faceveil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// worker pulls work items off the queue and runs face detection on them
type worker struct {
	id      int
	pool    *Pool
	queue   <-chan WorkItem
	results chan<- DetectionResult
	// batchWorkers limits the goroutines a batch fans out to
	batchWorkers int
	// acked counts frames whose result has been pushed
	acked   *atomic.Int64
	timings *Timings
	log     zerolog.Logger
}

// run processes work items until a sentinel is received or the context is
// cancelled
func (w *worker) run(ctx context.Context) {

	det := w.pool.Get()
	defer w.pool.Return(det)

	w.log.Debug().Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Debug().Msg("worker cancelled")
			return

		case item, ok := <-w.queue:
			if !ok {
				return
			}

			if item.Sentinel {
				w.log.Debug().Msg("end of queue")
				return
			}

			if ctx.Err() != nil {
				// lost the race against cancellation, give the frames back
				item.Close()
				return
			}

			w.process(det, item)
			w.acked.Add(int64(len(item.Frames)))
		}
	}
}

// process runs detection on every frame of the item.  Batches fan out to a
// bounded set of goroutines and all their results are pushed before process
// returns.
func (w *worker) process(det Detector, item WorkItem) {

	if len(item.Frames) == 1 || w.batchWorkers < 2 {
		for _, frame := range item.Frames {
			w.detect(det, frame)
		}
		return
	}

	// the inner goroutines share this worker's detector, so it needs the
	// same gate a shared detector has
	if w.pool.Policy() == PolicyPerWorker {
		det = Lock(det)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, w.batchWorkers)

	for _, frame := range item.Frames {
		sem <- struct{}{}
		wg.Add(1)

		go func(f Frame) {
			defer func() {
				<-sem
				wg.Done()
			}()
			w.detect(det, f)
		}(frame)
	}

	wg.Wait()
}

// detect runs the detector on a single frame and pushes the result.  A
// failed detection is logged and recorded as a frame without faces.
func (w *worker) detect(det Detector, frame Frame) {

	start := time.Now()
	boxes, err := safeFindFaces(det, frame)
	w.timings.Add(time.Since(start))

	_ = frame.Close()

	if err != nil {
		w.log.Warn().Err(&FrameError{Index: frame.Index, Err: err}).
			Int("frame", frame.Index).Msg("detection failed, recording no faces")
		boxes = nil
	}

	if boxes == nil {
		boxes = []BoundingBox{}
	}

	w.log.Trace().Int("frame", frame.Index).Int("faces", len(boxes)).
		Dur("took", time.Since(start)).Msg("processed frame")

	w.results <- DetectionResult{
		FrameIndex: frame.Index,
		Boxes:      boxes,
	}
}
