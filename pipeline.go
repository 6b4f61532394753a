package faceveil

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configure the detection pipeline
type Options struct {
	// Workers is the number of detection workers, defaults to the number
	// of CPUs
	Workers int
	// Policy defines how detectors are shared between workers
	Policy Policy
	// BatchSize is the number of contiguous frames per work item, 1 for
	// per-frame dispatch
	BatchSize int
	// BatchWorkers limits the goroutines a worker fans a batch out to
	BatchWorkers int
	// QueueSize is the capacity of the work queue, defaults to twice the
	// number of workers
	QueueSize int
	// MaxFrames stops reading the source after this many frames, 0 reads
	// the whole source
	MaxFrames int
	// DrainTimeout is how long a cancelled run waits for in-flight
	// detections before returning
	DrainTimeout time.Duration
	Logger       zerolog.Logger
}

// DefaultOptions returns per-frame dispatch over one worker per CPU sharing
// a single detector
func DefaultOptions() Options {
	return Options{
		Workers:      runtime.NumCPU(),
		Policy:       PolicyShared,
		BatchSize:    1,
		BatchWorkers: 4,
		QueueSize:    0,
		MaxFrames:    0,
		DrainTimeout: 5 * time.Second,
		Logger:       zerolog.Nop(),
	}
}

// validate checks option ranges and fills in derived defaults
func (o *Options) validate() error {

	if o.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, o.Workers)
	}

	if o.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be at least 1, got %d", ErrInvalidConfig, o.BatchSize)
	}

	if o.BatchWorkers < 1 {
		o.BatchWorkers = 1
	}

	if o.MaxFrames < 0 {
		return fmt.Errorf("%w: max frames must not be negative, got %d", ErrInvalidConfig, o.MaxFrames)
	}

	if o.QueueSize < 1 {
		o.QueueSize = 2 * o.Workers
	}

	if o.DrainTimeout <= 0 {
		o.DrainTimeout = 5 * time.Second
	}

	return nil
}

// Pipeline fans frames out to a pool of detection workers and collects the
// results back into frame order
type Pipeline struct {
	opts    Options
	pool    *Pool
	timings Timings
	log     zerolog.Logger
}

// NewPipeline validates the options, loads every detector the policy needs
// and warms them up.  Any configuration or model error is returned here,
// before a single frame is read.
func NewPipeline(factory DetectorFactory, opts Options) (*Pipeline, error) {

	if factory == nil {
		return nil, fmt.Errorf("%w: no detector factory given", ErrInvalidConfig)
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}

	poolSize := opts.Workers

	pool, err := NewPool(opts.Policy, poolSize, factory)

	if err != nil {
		return nil, err
	}

	if err := pool.Warmup(); err != nil {
		pool.Close()
		return nil, err
	}

	p := &Pipeline{
		opts: opts,
		pool: pool,
		log:  opts.Logger,
	}

	p.log.Debug().Int("workers", opts.Workers).Str("policy", opts.Policy.String()).
		Int("batch", opts.BatchSize).Int("queue", opts.QueueSize).
		Msg("pipeline ready")

	return p, nil
}

// Run detects faces on every frame of the source and returns the results
// in frame order.  The source is closed when reading stops.  A cancelled
// context or failing source yields a partial Sequence holding only the
// frames actually processed.
func (p *Pipeline) Run(ctx context.Context, src FrameSource) *Sequence {

	seq, rep := p.run(ctx, src, nil)

	return p.finish(seq, rep)
}

// Resume runs detection only for frames that have no result in prior and
// merges the new results into it
func (p *Pipeline) Resume(ctx context.Context, src FrameSource, prior *Sequence) *Sequence {

	if prior == nil || prior.Len() == 0 {
		return p.Run(ctx, src)
	}

	skip := make(map[int]bool, prior.Len())

	for _, idx := range prior.Indices() {
		skip[idx] = true
	}

	p.log.Info().Int("reused", len(skip)).Msg("resuming from previous detections")

	seq, rep := p.run(ctx, src, skip)

	return p.finish(prior.Merge(seq), rep)
}

// finish downgrades a complete sequence that does not hold exactly one
// result per frame read
func (p *Pipeline) finish(seq *Sequence, rep dispatchReport) *Sequence {

	if seq.Status == StatusComplete && (seq.Len() != rep.seen || !seq.Contiguous()) {
		seq.Status = StatusIncomplete
		seq.Err = fmt.Errorf("have %d results for %d frames read", seq.Len(), rep.seen)
	}

	p.log.Info().Str("status", seq.Status.String()).Int("results", seq.Len()).
		Int("frames", rep.seen).Stringer("inference", p.timings.Summary()).
		Msg("detection finished")

	return seq
}

// run wires the dispatcher, workers and aggregator together for one pass
// over the source
func (p *Pipeline) run(ctx context.Context, src FrameSource, skip map[int]bool) (*Sequence, dispatchReport) {

	workers := p.opts.Workers
	sizeHint := src.Metadata().FrameCount

	queue := make(chan WorkItem, p.opts.QueueSize)
	// room for every in-flight result so a worker never blocks on a
	// collector that has given up on it
	results := make(chan DetectionResult, workers*p.opts.BatchSize)

	var acked atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		w := &worker{
			id:           i,
			pool:         p.pool,
			queue:        queue,
			results:      results,
			batchWorkers: p.opts.BatchWorkers,
			acked:        &acked,
			timings:      &p.timings,
			log:          p.log.With().Int("worker", i).Logger(),
		}

		wg.Add(1)

		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}

	d := &dispatcher{
		src:       src,
		queue:     queue,
		workers:   workers,
		batchSize: p.opts.BatchSize,
		maxFrames: p.opts.MaxFrames,
		skip:      skip,
		log:       p.log,
	}

	repCh := make(chan dispatchReport, 1)
	dispatched := make(chan struct{})

	go func() {
		defer close(dispatched)
		repCh <- d.run(ctx)
	}()

	// barrier, once the dispatcher and every worker have stopped nothing
	// else is sent on either channel
	go func() {
		<-dispatched
		wg.Wait()

		// free frames left behind by a cancelled run
	drain:
		for {
			select {
			case item := <-queue:
				item.Close()
			default:
				break drain
			}
		}

		close(results)
	}()

	agg := &aggregator{
		results:      results,
		drainTimeout: p.opts.DrainTimeout,
		log:          p.log,
	}

	collected, barrier := agg.collect(ctx, sizeHint)

	var rep dispatchReport

	if barrier {
		rep = <-repCh
	} else {
		select {
		case rep = <-repCh:
		default:
			// dispatcher is still stuck reading the source
		}
	}

	p.log.Debug().Int("acked", int(acked.Load())).Int("collected", len(collected)).
		Bool("barrier", barrier).Msg("results collected")

	return agg.assemble(ctx, collected, barrier, rep), rep
}

// Timings returns statistics of the inference time per frame over every
// run of this pipeline
func (p *Pipeline) Timings() TimingSummary {
	return p.timings.Summary()
}

// Close releases every detector held by the pipeline
func (p *Pipeline) Close() {
	p.pool.Close()
}
