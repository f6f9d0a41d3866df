package txprobe

import "context"

// WorkItem is one unit of work. Its correlation id links the diagnostic and
// business rows written while processing it.
type WorkItem struct {
	CorrelationID string
}

// Validate checks required fields.
func (w WorkItem) Validate() error {
	if w.CorrelationID == "" {
		return ErrCorrelationRequired
	}

	return nil
}

// Queue accepts work items for future processing. The probe only relies on
// at-least-once delivery with no ordering and no implicit retry.
type Queue interface {
	// Submit enqueues an item.
	Submit(ctx context.Context, item WorkItem) error
}

// Source delivers work items to the loop.
type Source interface {
	// Receive blocks until an item is available or the context ends.
	Receive(ctx context.Context) (WorkItem, error)
}

// MemQueue is an in-process queue backed by a buffered channel. It implements
// both sides of the queue boundary for the harness and for tests.
type MemQueue struct {
	ch chan WorkItem
}

// NewMemQueue creates a queue with the given capacity. The capacity must
// exceed the worker count or self-resubmission can deadlock.
func NewMemQueue(capacity int) *MemQueue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}

	return &MemQueue{ch: make(chan WorkItem, capacity)}
}

// Submit implements Queue.
func (q *MemQueue) Submit(ctx context.Context, item WorkItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	select {
	case q.ch <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive implements Source.
func (q *MemQueue) Receive(ctx context.Context) (WorkItem, error) {
	select {
	case item := <-q.ch:
		return item, nil
	case <-ctx.Done():
		return WorkItem{}, ctx.Err()
	}
}

// Len returns the number of items currently buffered.
func (q *MemQueue) Len() int {
	return len(q.ch)
}
