package persistence

import (
	"context"
	"fmt"

	"github.com/shopadmin/backend/internal/domain/account"
	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"github.com/shopadmin/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

// UserRepository implements account.Repository and order.OwnerDirectory on the
// users collection
type UserRepository struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(store docstore.Store, logger *zap.Logger) *UserRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserRepository{store: store, logger: logger}
}

// List returns every customer account
func (r *UserRepository) List(ctx context.Context) ([]account.User, error) {
	docs, err := r.store.List(ctx, UsersCollection)
	if err != nil {
		return nil, err
	}
	users := make([]account.User, 0, len(docs))
	for _, doc := range docs {
		u, err := models.DecodeUser(doc.ID, doc.Data)
		if err != nil {
			skipUnreadable(r.logger, UsersCollection, doc.ID, err)
			continue
		}
		users = append(users, *u.ToDomain(doc.ID))
	}
	return users, nil
}

// FindByID returns one customer account
func (r *UserRepository) FindByID(ctx context.Context, id string) (*account.User, error) {
	u, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.ToDomain(id), nil
}

// Delete removes a customer account. The user's order collection is left in
// place; live order views stop including it once the account is gone.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, UsersCollection, id)
}

// ListOwners returns the owner view of every account
func (r *UserRepository) ListOwners(ctx context.Context) ([]order.Owner, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	owners := make([]order.Owner, len(users))
	for i, u := range users {
		owners[i] = order.Owner{ID: u.ID, FullName: u.FullName, Email: u.Email}
	}
	return owners, nil
}

// FindOwner returns the owner view of one account
func (r *UserRepository) FindOwner(ctx context.Context, userID string) (*order.Owner, error) {
	u, err := r.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	owner := u.ToOwner(userID)
	return &owner, nil
}

func (r *UserRepository) find(ctx context.Context, id string) (*models.UserDocument, error) {
	doc, err := r.store.Get(ctx, UsersCollection, id)
	if err != nil {
		return nil, err
	}
	u, err := models.DecodeUser(doc.ID, doc.Data)
	if err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return u, nil
}

var (
	_ account.Repository   = (*UserRepository)(nil)
	_ order.OwnerDirectory = (*UserRepository)(nil)
)
