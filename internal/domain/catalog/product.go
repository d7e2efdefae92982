package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Gender is the catalog section a product is listed under
type Gender string

const (
	GenderMen   Gender = "Men"
	GenderWomen Gender = "Women"
)

// ParseGender parses a gender name case-insensitively
func ParseGender(s string) (Gender, error) {
	g := Gender(cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s))))
	if !g.IsValid() {
		return "", shared.NewDomainError("INVALID_GENDER", fmt.Sprintf("Gender must be Men or Women, got %q", s))
	}
	return g, nil
}

// IsValid returns true for Men and Women
func (g Gender) IsValid() bool {
	return g == GenderMen || g == GenderWomen
}

// Product is a catalog item shown in the storefront
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Description string
	Gender      Gender
	ImageURL    string
}

// NewProduct creates a new product. Every field including the image is required.
func NewProduct(name string, price decimal.Decimal, description string, gender Gender, imageURL string) (*Product, error) {
	p := &Product{}
	if err := p.Update(name, price, description, gender); err != nil {
		return nil, err
	}
	if err := p.SetImage(imageURL); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the descriptive fields of the product
func (p *Product) Update(name string, price decimal.Decimal, description string, gender Gender) error {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if err := validateProductName(name); err != nil {
		return err
	}
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Product description cannot be empty")
	}
	if !gender.IsValid() {
		return shared.NewDomainError("INVALID_GENDER", "Gender must be Men or Women")
	}

	p.Name = name
	p.Price = price
	p.Description = description
	p.Gender = gender
	return nil
}

// SetImage replaces the product image reference
func (p *Product) SetImage(imageURL string) error {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return shared.NewDomainError("INVALID_IMAGE", "Product image is required")
	}
	p.ImageURL = imageURL
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

// ProductRepository provides access to the product collection
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	// Create stores a new product and assigns its ID
	Create(ctx context.Context, product *Product) error
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
}
