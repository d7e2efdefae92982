package persistence

import (
	"context"
	"fmt"

	"github.com/shopadmin/backend/internal/domain/feedback"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"github.com/shopadmin/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

// TestimonialRepository implements feedback.Repository on the testimonials collection
type TestimonialRepository struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewTestimonialRepository creates a new TestimonialRepository
func NewTestimonialRepository(store docstore.Store, logger *zap.Logger) *TestimonialRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TestimonialRepository{store: store, logger: logger}
}

// List returns every testimonial
func (r *TestimonialRepository) List(ctx context.Context) ([]feedback.Testimonial, error) {
	docs, err := r.store.List(ctx, TestimonialsCollection)
	if err != nil {
		return nil, err
	}
	out := make([]feedback.Testimonial, 0, len(docs))
	for _, doc := range docs {
		t, err := models.DecodeTestimonial(doc.ID, doc.Data)
		if err != nil {
			skipUnreadable(r.logger, TestimonialsCollection, doc.ID, err)
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

// FindByID returns one testimonial
func (r *TestimonialRepository) FindByID(ctx context.Context, id string) (*feedback.Testimonial, error) {
	doc, err := r.store.Get(ctx, TestimonialsCollection, id)
	if err != nil {
		return nil, err
	}
	t, err := models.DecodeTestimonial(doc.ID, doc.Data)
	if err != nil {
		return nil, fmt.Errorf("decode testimonial %s: %w", id, err)
	}
	return t, nil
}

// Save updates an existing testimonial
func (r *TestimonialRepository) Save(ctx context.Context, t *feedback.Testimonial) error {
	data, err := models.EncodeTestimonial(t)
	if err != nil {
		return shared.ErrInvalidInput.WithCause(err)
	}
	return r.store.Update(ctx, TestimonialsCollection, t.ID, data)
}

// Delete removes a testimonial
func (r *TestimonialRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, TestimonialsCollection, id)
}

var _ feedback.Repository = (*TestimonialRepository)(nil)
