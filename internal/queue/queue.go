package queue

import (
	"math/rand"
	"slices"
	"sync"

	"github.com/beatframe/beatframe/internal/track"
)

// Queue is an ordered collection of pending tracks for one guild. Insertion
// order is preserved except across an explicit Shuffle. The currently playing
// item never lives here; it belongs to the session.
type Queue struct {
	mu    sync.Mutex
	items []*track.Item
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{items: make([]*track.Item, 0)}
}

// Enqueue appends items in the given order.
func (q *Queue) Enqueue(items ...*track.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// TryDequeue removes and returns the head of the queue. The second return
// value is false when the queue is empty.
func (q *Queue) TryDequeue() (*track.Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	it := q.items[0]
	q.items = q.items[1:]
	return it, true
}

// Shuffle applies a uniform random permutation to the queued items.
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	rand.Shuffle(len(q.items), func(i, j int) {
		q.items[i], q.items[j] = q.items[j], q.items[i]
	})
}

// Clear removes all items. Safe to call on an empty queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}

// Snapshot returns a copy of the queued items for display. The copy is
// isolated from later mutations.
func (q *Queue) Snapshot() []*track.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
