package identity

import (
	"context"
	"io"

	"github.com/shopadmin/backend/internal/domain/identity"
	"github.com/stretchr/testify/mock"
)

// MockAdminRepository is a mock implementation of identity.AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Get(ctx context.Context) (*identity.Admin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Admin), args.Error(1)
}

func (m *MockAdminRepository) Save(ctx context.Context, admin *identity.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

// MockImageStore is a mock implementation of catalog.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, name, contentType, body)
	return args.String(0), args.Error(1)
}
