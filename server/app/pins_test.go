package app_test

import (
	"testing"

	"github.com/ericzzh/mattermost-autodelete/server/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffPins(t *testing.T) {
	local := []app.Message{pin(1), pin(3)}
	remote := []app.Message{pin(5), pin(1), pin(4)}

	diff := app.DiffPins(local, remote)

	assert.ElementsMatch(t, []string{"m5", "m4"}, diff.Added)
	require.Len(t, diff.Removed, 1)
	assert.Equal(t, "m3", diff.Removed[0].ID)
	assert.False(t, diff.Removed[0].Pinned)
	assert.Equal(t, []string{"m1", "m4", "m5"}, ids(diff.Pins))
	assert.False(t, diff.Empty())

	assert.True(t, app.DiffPins(diff.Pins, remote).Empty())
}

func TestApplyPins(t *testing.T) {
	newQueue := func(limit int, n ...int) *app.CappedQueue {
		cq := app.NewCappedQueue(limit)
		for _, i := range n {
			cq.Push(msg(i), false)
		}
		return cq
	}

	t.Run("pinning a queued message moves it out without eviction", func(t *testing.T) {
		cq := newQueue(5, 1, 2, 3, 4, 5)

		evicted := cq.ApplyPins(app.DiffPins(cq.Pins(), []app.Message{pin(3)}))

		assert.Empty(t, evicted)
		assert.Equal(t, []string{"m1", "m2", "m4", "m5"}, ids(cq.Messages()))
		assert.Equal(t, []string{"m3"}, ids(cq.Pins()))
	})

	t.Run("unpinning puts the message back in order and evicts overflow", func(t *testing.T) {
		cq := newQueue(5, 1, 2, 3, 4, 5)
		cq.ApplyPins(app.DiffPins(cq.Pins(), []app.Message{pin(3)}))
		cq.Push(msg(6), false)
		require.Equal(t, []string{"m1", "m2", "m4", "m5", "m6"}, ids(cq.Messages()))

		evicted := cq.ApplyPins(app.DiffPins(cq.Pins(), nil))

		assert.Equal(t, []string{"m1"}, ids(evicted))
		assert.Equal(t, []string{"m2", "m3", "m4", "m5", "m6"}, ids(cq.Messages()))
		assert.Empty(t, cq.Pins())
		assert.False(t, cq.Messages()[1].Pinned)
	})

	t.Run("an unpinned message older than everything is evicted first", func(t *testing.T) {
		cq := newQueue(3, 5, 6, 7)
		cq.InsertPin(pin(1))

		evicted := cq.ApplyPins(app.DiffPins(cq.Pins(), nil))

		assert.Equal(t, []string{"m1"}, ids(evicted))
		assert.Equal(t, []string{"m5", "m6", "m7"}, ids(cq.Messages()))
	})

	t.Run("reconciling twice is a no-op", func(t *testing.T) {
		cq := newQueue(4, 1, 2, 3, 4)
		cq.InsertPin(pin(0))
		snapshot := []app.Message{pin(2), pin(9)}

		cq.ApplyPins(app.DiffPins(cq.Pins(), snapshot))
		queue, pins := cq.Messages(), cq.Pins()

		diff := app.DiffPins(cq.Pins(), snapshot)
		assert.True(t, diff.Empty())
		assert.Empty(t, cq.ApplyPins(diff))
		assert.Equal(t, queue, cq.Messages())
		assert.Equal(t, pins, cq.Pins())
	})

	t.Run("queue and pins stay disjoint", func(t *testing.T) {
		cq := newQueue(5, 1, 2, 3, 4, 5)
		cq.ApplyPins(app.DiffPins(cq.Pins(), []app.Message{pin(1), pin(4)}))
		cq.ApplyPins(app.DiffPins(cq.Pins(), []app.Message{pin(4), pin(2)}))

		for _, p := range cq.Pins() {
			assert.False(t, cq.Contains(p.ID), p.ID)
		}
		assert.LessOrEqual(t, cq.Len(), cq.Limit())
	})
}
