package persistence

import (
	"context"
	"fmt"

	"github.com/shopadmin/backend/internal/domain/catalog"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"github.com/shopadmin/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

// ProductRepository implements catalog.ProductRepository on the products collection
type ProductRepository struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(store docstore.Store, logger *zap.Logger) *ProductRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductRepository{store: store, logger: logger}
}

// List returns every product
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	docs, err := r.store.List(ctx, ProductsCollection)
	if err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := models.DecodeProduct(doc.ID, doc.Data)
		if err != nil {
			skipUnreadable(r.logger, ProductsCollection, doc.ID, err)
			continue
		}
		products = append(products, *p)
	}
	return products, nil
}

// FindByID returns one product
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	doc, err := r.store.Get(ctx, ProductsCollection, id)
	if err != nil {
		return nil, err
	}
	p, err := models.DecodeProduct(doc.ID, doc.Data)
	if err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return p, nil
}

// Create stores a new product and assigns its ID
func (r *ProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	data, err := models.EncodeProduct(product)
	if err != nil {
		return shared.ErrInvalidInput.WithCause(err)
	}
	id, err := r.store.Create(ctx, ProductsCollection, data)
	if err != nil {
		return err
	}
	product.ID = id
	return nil
}

// Save updates the modelled fields of an existing product and keeps any other
// stored fields
func (r *ProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	data, err := models.EncodeProduct(product)
	if err != nil {
		return shared.ErrInvalidInput.WithCause(err)
	}
	return r.store.Update(ctx, ProductsCollection, product.ID, data)
}

// Delete removes a product
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, ProductsCollection, id)
}

var _ catalog.ProductRepository = (*ProductRepository)(nil)
