package models

import (
	"github.com/shopadmin/backend/internal/domain/feedback"
)

// TestimonialDocument is the stored layout of customer feedback
type TestimonialDocument struct {
	Name   Text  `json:"name"`
	Desc   Text  `json:"desc"`
	Rating Count `json:"rating"`
	Shown  Flag  `json:"shown"`
}

// ToDomain converts the document into a Testimonial
func (d *TestimonialDocument) ToDomain(id string) *feedback.Testimonial {
	return &feedback.Testimonial{
		ID:     id,
		Name:   d.Name.String(),
		Desc:   d.Desc.String(),
		Rating: int(d.Rating),
		Shown:  bool(d.Shown),
	}
}

// DecodeTestimonial reads a testimonial document
func DecodeTestimonial(id string, data map[string]any) (*feedback.Testimonial, error) {
	var doc TestimonialDocument
	if err := decodeData(data, &doc); err != nil {
		return nil, err
	}
	return doc.ToDomain(id), nil
}

// EncodeTestimonial converts a Testimonial into document data
func EncodeTestimonial(t *feedback.Testimonial) (map[string]any, error) {
	return encodeData(TestimonialDocument{
		Name:   Text(t.Name),
		Desc:   Text(t.Desc),
		Rating: Count(t.Rating),
		Shown:  Flag(t.Shown),
	})
}
