package feedback

import "github.com/shopadmin/backend/internal/domain/feedback"

// UpdateTestimonialRequest edits a testimonial. Nil fields keep their value.
type UpdateTestimonialRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=100"`
	Desc   *string `json:"desc" binding:"omitempty,min=1,max=2000"`
	Rating *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Shown  *bool   `json:"shown"`
}

// TestimonialResponse represents a testimonial in API responses
type TestimonialResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	Rating int    `json:"rating"`
	Shown  bool   `json:"shown"`
}

// ToTestimonialResponse converts a domain testimonial to a response
func ToTestimonialResponse(t *feedback.Testimonial) TestimonialResponse {
	return TestimonialResponse{
		ID:     t.ID,
		Name:   t.Name,
		Desc:   t.Desc,
		Rating: t.Rating,
		Shown:  t.Shown,
	}
}

// VisibilityCounts is the number of shown and hidden testimonials
type VisibilityCounts struct {
	Visible int `json:"visible"`
	Hidden  int `json:"hidden"`
}
