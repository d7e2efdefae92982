package models

import (
	"github.com/shopadmin/backend/internal/domain/catalog"
)

// ProductDocument is the stored layout of a catalog product
type ProductDocument struct {
	Name        Text   `json:"name"`
	Price       Amount `json:"price"`
	Description Text   `json:"description"`
	Gender      Text   `json:"gender"`
	ImageURL    Text   `json:"imageUrl"`
}

// ToDomain converts the document into a Product
func (d *ProductDocument) ToDomain(id string) *catalog.Product {
	gender := catalog.Gender(d.Gender.String())
	if parsed, err := catalog.ParseGender(d.Gender.String()); err == nil {
		gender = parsed
	}
	return &catalog.Product{
		ID:          id,
		Name:        d.Name.String(),
		Price:       d.Price.Decimal,
		Description: d.Description.String(),
		Gender:      gender,
		ImageURL:    d.ImageURL.String(),
	}
}

// FromDomain populates the document from a Product
func (d *ProductDocument) FromDomain(p *catalog.Product) {
	d.Name = Text(p.Name)
	d.Price = NewAmount(p.Price)
	d.Description = Text(p.Description)
	d.Gender = Text(p.Gender)
	d.ImageURL = Text(p.ImageURL)
}

// DecodeProduct reads a product document
func DecodeProduct(id string, data map[string]any) (*catalog.Product, error) {
	var doc ProductDocument
	if err := decodeData(data, &doc); err != nil {
		return nil, err
	}
	return doc.ToDomain(id), nil
}

// EncodeProduct converts a Product into document data
func EncodeProduct(p *catalog.Product) (map[string]any, error) {
	var doc ProductDocument
	doc.FromDomain(p)
	return encodeData(doc)
}
