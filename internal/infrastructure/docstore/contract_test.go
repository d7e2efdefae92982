package docstore

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotRecorder collects the snapshots delivered to a watcher
type snapshotRecorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *snapshotRecorder) record(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *snapshotRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *snapshotRecorder) last() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return Snapshot{}
	}
	return r.snaps[len(r.snaps)-1]
}

// runStoreContract exercises the behaviour every Store backend shares
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("set then get normalizes values", func(t *testing.T) {
		s := newStore(t)
		err := s.Set(ctx, "products", "p1", map[string]any{
			"name":  "Shirt",
			"price": decimal.RequireFromString("19.90"),
			"qty":   3,
			"tags":  []string{"a", "b"},
		})
		require.NoError(t, err)

		doc, err := s.Get(ctx, "products", "p1")
		require.NoError(t, err)
		assert.Equal(t, "p1", doc.ID)
		assert.Equal(t, "Shirt", doc.Data["name"])
		assert.Equal(t, "19.9", doc.Data["price"])
		assert.Equal(t, json.Number("3"), doc.Data["qty"])
		assert.Equal(t, []any{"a", "b"}, doc.Data["tags"])
		assert.False(t, doc.CreatedAt.IsZero())
	})

	t.Run("get missing document returns not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "products", "missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("invalid paths are rejected", func(t *testing.T) {
		s := newStore(t)
		_, err := s.List(ctx, "users/u1")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		err = s.Set(ctx, "products", "a/b", map[string]any{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("set replaces the whole document", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "products", "p1", map[string]any{"a": "1", "b": "2"}))
		require.NoError(t, s.Set(ctx, "products", "p1", map[string]any{"a": "3"}))

		doc, err := s.Get(ctx, "products", "p1")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": "3"}, doc.Data)
	})

	t.Run("update merges top-level fields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "users/u1/orders", "o1", map[string]any{"status": "Pending", "total": "10"}))
		require.NoError(t, s.Update(ctx, "users/u1/orders", "o1", map[string]any{"status": "Packed"}))

		doc, err := s.Get(ctx, "users/u1/orders", "o1")
		require.NoError(t, err)
		assert.Equal(t, "Packed", doc.Data["status"])
		assert.Equal(t, "10", doc.Data["total"])
	})

	t.Run("update missing document returns not found", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(ctx, "users/u1/orders", "nope", map[string]any{"status": "Packed"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("delete removes the document", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "products", "p1", map[string]any{"name": "x"}))
		require.NoError(t, s.Delete(ctx, "products", "p1"))

		_, err := s.Get(ctx, "products", "p1")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "products", "p1"), shared.ErrNotFound)
	})

	t.Run("list is ordered by id and scoped to the collection", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "users/u1/orders", "b", map[string]any{}))
		require.NoError(t, s.Set(ctx, "users/u1/orders", "a", map[string]any{}))
		require.NoError(t, s.Set(ctx, "users/u2/orders", "c", map[string]any{}))

		docs, err := s.List(ctx, "users/u1/orders")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, Snapshot{Docs: docs}.IDs())

		docs, err = s.List(ctx, "users/u3/orders")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("create assigns an id", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, "testimonials", map[string]any{"name": "Ann"})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		doc, err := s.Get(ctx, "testimonials", id)
		require.NoError(t, err)
		assert.Equal(t, "Ann", doc.Data["name"])
	})

	t.Run("watch delivers the initial snapshot before returning", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "users", "u1", map[string]any{"fullName": "Ann"}))

		rec := &snapshotRecorder{}
		sub, err := s.Watch(ctx, "users", rec.record)
		require.NoError(t, err)
		defer sub.Close()

		require.Equal(t, 1, rec.count())
		assert.Equal(t, "users", rec.last().Collection)
		assert.Equal(t, []string{"u1"}, rec.last().IDs())
	})

	t.Run("watch delivers a fresh snapshot after writes", func(t *testing.T) {
		s := newStore(t)
		rec := &snapshotRecorder{}
		sub, err := s.Watch(ctx, "users", rec.record)
		require.NoError(t, err)
		defer sub.Close()

		require.NoError(t, s.Set(ctx, "users", "u1", map[string]any{}))
		require.NoError(t, s.Set(ctx, "users", "u2", map[string]any{}))

		require.Eventually(t, func() bool {
			ids := rec.last().IDs()
			return len(ids) == 2 && ids[0] == "u1" && ids[1] == "u2"
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("writes to other collections do not trigger deliveries", func(t *testing.T) {
		s := newStore(t)
		rec := &snapshotRecorder{}
		sub, err := s.Watch(ctx, "users", rec.record)
		require.NoError(t, err)
		defer sub.Close()

		require.NoError(t, s.Set(ctx, "products", "p1", map[string]any{}))
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 1, rec.count())
	})

	t.Run("closed watch receives nothing further", func(t *testing.T) {
		s := newStore(t)
		rec := &snapshotRecorder{}
		sub, err := s.Watch(ctx, "users", rec.record)
		require.NoError(t, err)
		require.NoError(t, sub.Close())

		require.NoError(t, s.Set(ctx, "users", "u1", map[string]any{}))
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 1, rec.count())
	})

	t.Run("notify triggers a reload", func(t *testing.T) {
		s := newStore(t)
		rec := &snapshotRecorder{}
		sub, err := s.Watch(ctx, "users", rec.record)
		require.NoError(t, err)
		defer sub.Close()

		s.Notify("users")
		require.Eventually(t, func() bool { return rec.count() >= 2 }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("watch after close is unavailable", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Close())

		_, err := s.Watch(ctx, "users", func(Snapshot) {})
		assert.ErrorIs(t, err, shared.ErrUnavailable)
	})
}

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
