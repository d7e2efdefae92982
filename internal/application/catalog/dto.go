package catalog

import (
	"github.com/shopadmin/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product.
// Handlers fill it from multipart form fields.
type CreateProductRequest struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Gender      string
}

// UpdateProductRequest represents a request to update a product.
// Nil fields keep their current value.
type UpdateProductRequest struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	Gender      *string
}

// ProductListFilter narrows the product list
type ProductListFilter struct {
	Search string `form:"search"`
	Gender string `form:"gender"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Gender      catalog.Gender  `json:"gender"`
	ImageURL    string          `json:"imageUrl"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Gender:      p.Gender,
		ImageURL:    p.ImageURL,
	}
}

// ToProductResponses converts a list of domain products to responses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
