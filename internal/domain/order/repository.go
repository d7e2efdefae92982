package order

import (
	"context"

	"github.com/shopadmin/backend/internal/domain/shared"
)

// Repository reads and writes live and archived orders
type Repository interface {
	FindLive(ctx context.Context, userID, orderID string) (*Order, error)
	ListLive(ctx context.Context, userID string) ([]Order, error)
	// UpdateStatus patches only the status field of a live order
	UpdateStatus(ctx context.Context, userID, orderID string, status Status) error
	DeleteLive(ctx context.Context, userID, orderID string) error

	// SaveArchived creates or replaces the archive entry keyed by the order id
	SaveArchived(ctx context.Context, archived *ArchivedOrder) error
	FindArchived(ctx context.Context, kind ArchiveKind, orderID string) (*ArchivedOrder, error)
	ListArchived(ctx context.Context, kind ArchiveKind) ([]ArchivedOrder, error)
}

// OwnerDirectory resolves the customer accounts that own live order collections
type OwnerDirectory interface {
	ListOwners(ctx context.Context) ([]Owner, error)
	FindOwner(ctx context.Context, userID string) (*Owner, error)
}

// Feed opens live queries over the order collections. Each callback receives the
// complete current contents of its collection, first when the query opens and
// again after every change.
type Feed interface {
	WatchOwners(ctx context.Context, fn func([]Owner)) (shared.Subscription, error)
	WatchLive(ctx context.Context, userID string, fn func([]Order)) (shared.Subscription, error)
	WatchArchive(ctx context.Context, kind ArchiveKind, fn func([]ArchivedOrder)) (shared.Subscription, error)
}
