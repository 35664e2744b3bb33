// Package queue holds the in-process ingestion buffer that sits between
// the Kafka consumer and the batch dispatcher. The queue is transient:
// events not yet flushed are lost on process exit.
package queue

import (
	"sync"

	"github.com/bazarly/analytics/domain"
)

// Queue is an unbounded append-only event buffer. Enqueue and DrainAll
// may be called from different goroutines; DrainAll swaps the backing
// slice so events arriving during a flush land in the next batch.
type Queue struct {
	mu     sync.Mutex
	events []domain.Event
	closed bool
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends an event to the current batch.
func (q *Queue) Enqueue(ev domain.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return domain.ErrQueueClosed
	}
	q.events = append(q.events, ev)
	return nil
}

// DrainAll atomically removes and returns all buffered events. Returns
// nil when the queue is empty.
func (q *Queue) DrainAll() []domain.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.events
	q.events = nil
	return batch
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close rejects further enqueues. Already buffered events remain
// drainable so a final flush can run during shutdown.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
