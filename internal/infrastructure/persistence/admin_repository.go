package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopadmin/backend/internal/domain/identity"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"github.com/shopadmin/backend/internal/infrastructure/persistence/models"
)

// AdminRepository implements identity.AdminRepository on the admin document
type AdminRepository struct {
	store docstore.Store
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(store docstore.Store) *AdminRepository {
	return &AdminRepository{store: store}
}

// Get returns the admin account
func (r *AdminRepository) Get(ctx context.Context) (*identity.Admin, error) {
	doc, err := r.store.Get(ctx, AdminCollection, identity.AdminID)
	if err != nil {
		return nil, err
	}
	a, err := models.DecodeAdmin(doc.ID, doc.Data)
	if err != nil {
		return nil, fmt.Errorf("decode admin: %w", err)
	}
	return a, nil
}

// Save writes the admin fields, creating the document on first save
func (r *AdminRepository) Save(ctx context.Context, admin *identity.Admin) error {
	data, err := models.EncodeAdmin(admin)
	if err != nil {
		return shared.ErrInvalidInput.WithCause(err)
	}
	err = r.store.Update(ctx, AdminCollection, identity.AdminID, data)
	if errors.Is(err, shared.ErrNotFound) {
		return r.store.Set(ctx, AdminCollection, identity.AdminID, data)
	}
	return err
}

var _ identity.AdminRepository = (*AdminRepository)(nil)
