package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/shopadmin/backend/internal/domain/catalog"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	products catalog.ProductRepository
	images   ImageStore
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, images ImageStore, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products: products,
		images:   images,
		logger:   logger,
	}
}

// List returns products whose name contains the search text, optionally
// limited to one gender, sorted by name
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, error) {
	var gender catalog.Gender
	if strings.TrimSpace(filter.Gender) != "" && !strings.EqualFold(filter.Gender, "all") {
		g, err := catalog.ParseGender(filter.Gender)
		if err != nil {
			return nil, err
		}
		gender = g
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := products[:0:0]
	for _, p := range products {
		if gender != "" && p.Gender != gender {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})
	return ToProductResponses(matched), nil
}

// Count returns the number of products in the catalog
func (s *ProductService) Count(ctx context.Context) (int, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

// GetByID returns a product
func (s *ProductService) GetByID(ctx context.Context, id string) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// Create uploads the image and stores a new product. The image is required.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest, image *Image) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "create")
	defer span.End()

	gender, err := catalog.ParseGender(req.Gender)
	if err != nil {
		return nil, err
	}
	if image == nil {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Product image is required")
	}
	// Validate before uploading so a rejected product leaves no orphaned image.
	if _, err := catalog.NewProduct(req.Name, req.Price, req.Description, gender, "pending"); err != nil {
		return nil, err
	}

	imageURL, err := s.upload(ctx, image)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	product, err := catalog.NewProduct(req.Name, req.Price, req.Description, gender, imageURL)
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(telemetry.Attribute(telemetry.AttrProductID, product.ID))

	s.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	response := ToProductResponse(product)
	return &response, nil
}

// Update changes the given fields. A new image replaces the current one.
func (s *ProductService) Update(ctx context.Context, id string, req UpdateProductRequest, image *Image) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "update", telemetry.AttrProductID, id)
	defer span.End()

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, price, description, gender := product.Name, product.Price, product.Description, product.Gender
	if req.Name != nil {
		name = *req.Name
	}
	if req.Price != nil {
		price = *req.Price
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Gender != nil {
		if gender, err = catalog.ParseGender(*req.Gender); err != nil {
			return nil, err
		}
	}
	if err := product.Update(name, price, description, gender); err != nil {
		return nil, err
	}

	if image != nil {
		imageURL, err := s.upload(ctx, image)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := product.SetImage(imageURL); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Product updated", zap.String("product_id", product.ID))
	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product. The stored image is left in place.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

func (s *ProductService) upload(ctx context.Context, image *Image) (string, error) {
	url, err := s.images.Upload(ctx, image.Name, image.ContentType, image.Body)
	if err != nil {
		s.logger.Error("Failed to upload product image", zap.String("name", image.Name), zap.Error(err))
		return "", shared.NewDomainError("UPLOAD_FAILED", "Failed to upload product image").WithCause(err)
	}
	return url, nil
}
