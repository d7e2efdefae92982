package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *docstore.MemoryStore {
	t.Helper()
	s := docstore.NewMemoryStore(nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedOrder(t *testing.T, s docstore.Store, userID, orderID, status string) {
	t.Helper()
	require.NoError(t, s.Set(context.Background(), LiveOrdersCollection(userID), orderID, map[string]any{
		"customerName": "Ann",
		"email":        "ann@example.com",
		"status":       status,
		"total":        25,
		"orderDate":    "2024-03-01T10:00:00Z",
	}))
}

func TestCollectionPaths(t *testing.T) {
	assert.Equal(t, "users/u1/orders", LiveOrdersCollection("u1"))
	assert.Equal(t, "orders/cancelled_orders/list", ArchiveCollection(order.ArchiveCancelled))
	assert.Equal(t, "orders/completed_orders/list", ArchiveCollection(order.ArchiveCompleted))
}

func TestOrderRepository_LiveOrders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := NewOrderRepository(s, nil)
	seedOrder(t, s, "u1", "o1", "Pending")
	seedOrder(t, s, "u1", "o2", "Shipped")

	o, err := repo.FindLive(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, order.StatusPending, o.Status)

	list, err := repo.ListLive(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.UpdateStatus(ctx, "u1", "o1", order.StatusPacked))
	doc, err := s.Get(ctx, LiveOrdersCollection("u1"), "o1")
	require.NoError(t, err)
	assert.Equal(t, "Packed", doc.Data["status"])
	assert.Equal(t, "Ann", doc.Data["customerName"])

	require.NoError(t, repo.DeleteLive(ctx, "u1", "o1"))
	_, err = repo.FindLive(ctx, "u1", "o1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderRepository_UpdateMissingOrder(t *testing.T) {
	repo := NewOrderRepository(newTestStore(t), nil)
	err := repo.UpdateStatus(context.Background(), "u1", "missing", order.StatusPacked)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderRepository_Archive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := NewOrderRepository(s, nil)
	seedOrder(t, s, "u1", "o1", "Completed")

	o, err := repo.FindLive(ctx, "u1", "o1")
	require.NoError(t, err)
	archived, err := order.NewArchivedOrder(o, order.Owner{ID: "u1", FullName: "Ann", Email: "ann@example.com"}, time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.SaveArchived(ctx, archived))
	// Saving again replaces the entry instead of adding a second one.
	require.NoError(t, repo.SaveArchived(ctx, archived))

	list, err := repo.ListArchived(ctx, order.ArchiveCompleted)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "o1", list[0].ID)
	assert.Equal(t, "u1", list[0].UserID)
	assert.Equal(t, "Ann", list[0].UserName)
	assert.Equal(t, order.StatusCompleted, list[0].Status)

	found, err := repo.FindArchived(ctx, order.ArchiveCompleted, "o1")
	require.NoError(t, err)
	assert.NotNil(t, found.ArchivedAt)

	_, err = repo.FindArchived(ctx, order.ArchiveCancelled, "o1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderRepository_Watch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := NewOrderRepository(s, nil)
	seedOrder(t, s, "u1", "o1", "Pending")
	require.NoError(t, s.Set(ctx, UsersCollection, "u1", map[string]any{"fullName": "Ann", "email": "ann@example.com"}))

	var mu sync.Mutex
	var owners []order.Owner
	var live []order.Order

	ownersSub, err := repo.WatchOwners(ctx, func(o []order.Owner) {
		mu.Lock()
		defer mu.Unlock()
		owners = o
	})
	require.NoError(t, err)
	defer ownersSub.Close()

	liveSub, err := repo.WatchLive(ctx, "u1", func(o []order.Order) {
		mu.Lock()
		defer mu.Unlock()
		live = o
	})
	require.NoError(t, err)
	defer liveSub.Close()

	mu.Lock()
	require.Len(t, owners, 1)
	assert.Equal(t, "Ann", owners[0].FullName)
	require.Len(t, live, 1)
	mu.Unlock()

	seedOrder(t, s, "u1", "o2", "Pending")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(live) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOrderRepository_WatchLiveRejectsBadUserID(t *testing.T) {
	repo := NewOrderRepository(newTestStore(t), nil)
	_, err := repo.WatchLive(context.Background(), "a/b", func([]order.Order) {})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
