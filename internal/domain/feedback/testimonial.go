package feedback

import (
	"context"
	"strings"

	"github.com/shopadmin/backend/internal/domain/shared"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// Visibility filters testimonials by their shown flag
type Visibility string

const (
	VisibilityAll     Visibility = "all"
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

// ParseVisibility parses a filter value; empty means all
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VisibilityAll, nil
	case VisibilityAll, VisibilityVisible, VisibilityHidden:
		return v, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", "Filter must be all, visible or hidden")
}

// Matches reports whether t passes the filter
func (v Visibility) Matches(t *Testimonial) bool {
	switch v {
	case VisibilityVisible:
		return t.Shown
	case VisibilityHidden:
		return !t.Shown
	}
	return true
}

// Testimonial is customer feedback that may be shown on the storefront
type Testimonial struct {
	ID     string
	Name   string
	Desc   string
	Rating int
	Shown  bool
}

// SetShown sets the visibility flag
func (t *Testimonial) SetShown(shown bool) {
	t.Shown = shown
}

// ToggleShown flips the visibility flag and returns the new value
func (t *Testimonial) ToggleShown() bool {
	t.Shown = !t.Shown
	return t.Shown
}

// Edit replaces the author, text and rating
func (t *Testimonial) Edit(name, desc string, rating int) error {
	name = strings.TrimSpace(name)
	desc = strings.TrimSpace(desc)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if desc == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Feedback text cannot be empty")
	}
	if rating < MinRating || rating > MaxRating {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	t.Name = name
	t.Desc = desc
	t.Rating = rating
	return nil
}

// Repository provides access to the testimonial collection
type Repository interface {
	List(ctx context.Context) ([]Testimonial, error)
	FindByID(ctx context.Context, id string) (*Testimonial, error)
	Save(ctx context.Context, t *Testimonial) error
	Delete(ctx context.Context, id string) error
}
