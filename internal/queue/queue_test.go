package queue

import (
	"fmt"
	"testing"

	"github.com/beatframe/beatframe/internal/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItems(n int) []*track.Item {
	items := make([]*track.Item, n)
	for i := range items {
		items[i] = &track.Item{ID: fmt.Sprintf("id-%d", i), Title: fmt.Sprintf("Track %d", i)}
	}
	return items
}

func TestFIFOOrder(t *testing.T) {
	q := New()
	items := makeItems(5)
	q.Enqueue(items...)

	for i := 0; i < 5; i++ {
		it, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, items[i].ID, it.ID)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue on empty queue must report not found")
}

func TestShuffleIsPermutation(t *testing.T) {
	q := New()
	items := makeItems(50)
	q.Enqueue(items...)

	q.Shuffle()

	got := q.Snapshot()
	require.Len(t, got, len(items))

	seen := make(map[string]int)
	for _, it := range got {
		seen[it.ID]++
	}
	for _, it := range items {
		assert.Equal(t, 1, seen[it.ID], "item %s must appear exactly once", it.ID)
	}
}

func TestClearIdempotent(t *testing.T) {
	q := New()
	q.Enqueue(makeItems(3)...)

	q.Clear()
	assert.Equal(t, 0, q.Len())

	q.Clear()
	assert.Equal(t, 0, q.Len())
}

func TestSnapshotIsolation(t *testing.T) {
	q := New()
	q.Enqueue(makeItems(3)...)

	snap := q.Snapshot()
	q.Clear()

	assert.Len(t, snap, 3, "snapshot must not observe later mutations")
}
