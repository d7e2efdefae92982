package feedback

import (
	"context"
	"sort"

	"github.com/shopadmin/backend/internal/domain/feedback"
	"go.uber.org/zap"
)

// TestimonialService moderates customer feedback
type TestimonialService struct {
	testimonials feedback.Repository
	logger       *zap.Logger
}

// NewTestimonialService creates a new TestimonialService
func NewTestimonialService(testimonials feedback.Repository, logger *zap.Logger) *TestimonialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TestimonialService{testimonials: testimonials, logger: logger}
}

// List returns the testimonials matching filter ("all", "visible" or "hidden")
func (s *TestimonialService) List(ctx context.Context, filter string) ([]TestimonialResponse, error) {
	visibility, err := feedback.ParseVisibility(filter)
	if err != nil {
		return nil, err
	}
	all, err := s.testimonials.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TestimonialResponse, 0, len(all))
	for i := range all {
		if visibility.Matches(&all[i]) {
			out = append(out, ToTestimonialResponse(&all[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Counts returns how many testimonials are shown and hidden
func (s *TestimonialService) Counts(ctx context.Context) (VisibilityCounts, error) {
	all, err := s.testimonials.List(ctx)
	if err != nil {
		return VisibilityCounts{}, err
	}
	var counts VisibilityCounts
	for _, t := range all {
		if t.Shown {
			counts.Visible++
		} else {
			counts.Hidden++
		}
	}
	return counts, nil
}

// Update edits the text fields and visibility of a testimonial
func (s *TestimonialService) Update(ctx context.Context, id string, req UpdateTestimonialRequest) (*TestimonialResponse, error) {
	t, err := s.testimonials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Desc != nil || req.Rating != nil {
		name, desc, rating := t.Name, t.Desc, t.Rating
		if req.Name != nil {
			name = *req.Name
		}
		if req.Desc != nil {
			desc = *req.Desc
		}
		if req.Rating != nil {
			rating = *req.Rating
		}
		if err := t.Edit(name, desc, rating); err != nil {
			return nil, err
		}
	}
	if req.Shown != nil {
		t.SetShown(*req.Shown)
	}

	if err := s.testimonials.Save(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("Testimonial updated", zap.String("testimonial_id", id), zap.Bool("shown", t.Shown))
	response := ToTestimonialResponse(t)
	return &response, nil
}

// Toggle flips whether a testimonial is shown on the storefront
func (s *TestimonialService) Toggle(ctx context.Context, id string) (*TestimonialResponse, error) {
	t, err := s.testimonials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	shown := t.ToggleShown()
	if err := s.testimonials.Save(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("Testimonial visibility toggled", zap.String("testimonial_id", id), zap.Bool("shown", shown))
	response := ToTestimonialResponse(t)
	return &response, nil
}

// Delete removes a testimonial
func (s *TestimonialService) Delete(ctx context.Context, id string) error {
	if err := s.testimonials.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Testimonial deleted", zap.String("testimonial_id", id))
	return nil
}
