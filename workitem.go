package faceveil

// WorkItem is the unit of work placed on the shared queue.  In per-frame
// mode it carries a single Frame, in batched mode a contiguous run of Frames.
// A sentinel carries no frames and tells exactly one worker to stop.
type WorkItem struct {
	Frames   []Frame
	Sentinel bool
}

// sentinel returns the queue shutdown marker
func sentinel() WorkItem {
	return WorkItem{Sentinel: true}
}

// Close frees every frame held by the item
func (w WorkItem) Close() {
	for i := range w.Frames {
		_ = w.Frames[i].Close()
	}
}

// batcher accumulates frames into work items of a fixed size
type batcher struct {
	size  int
	items []Frame
}

// newBatcher returns a batcher producing items of up to size frames
func newBatcher(size int) *batcher {

	if size < 1 {
		size = 1
	}

	return &batcher{
		size:  size,
		items: make([]Frame, 0, size),
	}
}

// Add a frame to the batch, returns true when the batch is full
func (b *batcher) Add(f Frame) bool {
	b.items = append(b.items, f)
	return len(b.items) >= b.size
}

// Len returns the number of frames waiting in the batch
func (b *batcher) Len() int {
	return len(b.items)
}

// Take returns the frames collected as a WorkItem and starts a new batch
func (b *batcher) Take() WorkItem {
	item := WorkItem{Frames: b.items}
	b.items = make([]Frame, 0, b.size)
	return item
}
