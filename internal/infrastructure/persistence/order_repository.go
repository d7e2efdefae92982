package persistence

import (
	"context"
	"fmt"

	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"github.com/shopadmin/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

// OrderRepository implements order.Repository and order.Feed on the document store
type OrderRepository struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(store docstore.Store, logger *zap.Logger) *OrderRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderRepository{store: store, logger: logger}
}

// FindLive returns one live order
func (r *OrderRepository) FindLive(ctx context.Context, userID, orderID string) (*order.Order, error) {
	doc, err := r.store.Get(ctx, LiveOrdersCollection(userID), orderID)
	if err != nil {
		return nil, err
	}
	o, err := models.DecodeOrder(doc.ID, userID, doc.Data)
	if err != nil {
		return nil, fmt.Errorf("decode order %s: %w", orderID, err)
	}
	return o, nil
}

// ListLive returns the live orders of one user
func (r *OrderRepository) ListLive(ctx context.Context, userID string) ([]order.Order, error) {
	docs, err := r.store.List(ctx, LiveOrdersCollection(userID))
	if err != nil {
		return nil, err
	}
	return r.liveOrders(userID, docs), nil
}

// UpdateStatus patches only the status field of a live order
func (r *OrderRepository) UpdateStatus(ctx context.Context, userID, orderID string, status order.Status) error {
	return r.store.Update(ctx, LiveOrdersCollection(userID), orderID, map[string]any{
		"status": string(status),
	})
}

// DeleteLive removes a live order
func (r *OrderRepository) DeleteLive(ctx context.Context, userID, orderID string) error {
	return r.store.Delete(ctx, LiveOrdersCollection(userID), orderID)
}

// SaveArchived creates or replaces the archive entry keyed by the order id
func (r *OrderRepository) SaveArchived(ctx context.Context, archived *order.ArchivedOrder) error {
	if !archived.Kind.IsValid() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("unknown archive kind %q", archived.Kind))
	}
	data, err := models.EncodeArchivedOrder(archived)
	if err != nil {
		return shared.ErrInvalidInput.WithCause(err)
	}
	return r.store.Set(ctx, ArchiveCollection(archived.Kind), archived.ID, data)
}

// FindArchived returns one archive entry
func (r *OrderRepository) FindArchived(ctx context.Context, kind order.ArchiveKind, orderID string) (*order.ArchivedOrder, error) {
	doc, err := r.store.Get(ctx, ArchiveCollection(kind), orderID)
	if err != nil {
		return nil, err
	}
	a, err := models.DecodeArchivedOrder(doc.ID, kind, doc.Data)
	if err != nil {
		return nil, fmt.Errorf("decode archived order %s: %w", orderID, err)
	}
	return a, nil
}

// ListArchived returns every entry of one archive
func (r *OrderRepository) ListArchived(ctx context.Context, kind order.ArchiveKind) ([]order.ArchivedOrder, error) {
	docs, err := r.store.List(ctx, ArchiveCollection(kind))
	if err != nil {
		return nil, err
	}
	return r.archivedOrders(kind, docs), nil
}

// WatchOwners opens a live query on the customer accounts
func (r *OrderRepository) WatchOwners(ctx context.Context, fn func([]order.Owner)) (shared.Subscription, error) {
	return r.store.Watch(ctx, UsersCollection, func(snap docstore.Snapshot) {
		fn(r.owners(snap.Docs))
	})
}

// WatchLive opens a live query on the live orders of one user
func (r *OrderRepository) WatchLive(ctx context.Context, userID string, fn func([]order.Order)) (shared.Subscription, error) {
	if err := docstore.ValidateID(userID); err != nil {
		return nil, err
	}
	return r.store.Watch(ctx, LiveOrdersCollection(userID), func(snap docstore.Snapshot) {
		fn(r.liveOrders(userID, snap.Docs))
	})
}

// WatchArchive opens a live query on one archive
func (r *OrderRepository) WatchArchive(ctx context.Context, kind order.ArchiveKind, fn func([]order.ArchivedOrder)) (shared.Subscription, error) {
	return r.store.Watch(ctx, ArchiveCollection(kind), func(snap docstore.Snapshot) {
		fn(r.archivedOrders(kind, snap.Docs))
	})
}

func (r *OrderRepository) liveOrders(userID string, docs []docstore.Document) []order.Order {
	collection := LiveOrdersCollection(userID)
	out := make([]order.Order, 0, len(docs))
	for _, doc := range docs {
		o, err := models.DecodeOrder(doc.ID, userID, doc.Data)
		if err != nil {
			skipUnreadable(r.logger, collection, doc.ID, err)
			continue
		}
		out = append(out, *o)
	}
	return out
}

func (r *OrderRepository) archivedOrders(kind order.ArchiveKind, docs []docstore.Document) []order.ArchivedOrder {
	collection := ArchiveCollection(kind)
	out := make([]order.ArchivedOrder, 0, len(docs))
	for _, doc := range docs {
		a, err := models.DecodeArchivedOrder(doc.ID, kind, doc.Data)
		if err != nil {
			skipUnreadable(r.logger, collection, doc.ID, err)
			continue
		}
		out = append(out, *a)
	}
	return out
}

func (r *OrderRepository) owners(docs []docstore.Document) []order.Owner {
	out := make([]order.Owner, 0, len(docs))
	for _, doc := range docs {
		u, err := models.DecodeUser(doc.ID, doc.Data)
		if err != nil {
			skipUnreadable(r.logger, UsersCollection, doc.ID, err)
			continue
		}
		out = append(out, u.ToOwner(doc.ID))
	}
	return out
}

var (
	_ order.Repository = (*OrderRepository)(nil)
	_ order.Feed       = (*OrderRepository)(nil)
)
