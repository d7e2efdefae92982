package persistence

import (
	"context"
	"testing"

	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestimonialRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := NewTestimonialRepository(s, nil)

	require.NoError(t, s.Set(ctx, TestimonialsCollection, "t1", map[string]any{
		"name":   "Ann",
		"desc":   "Great fit",
		"rating": "5",
		"shown":  true,
	}))

	fb, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Rating)
	assert.True(t, fb.Shown)

	fb.ToggleShown()
	require.NoError(t, fb.Edit("Ann L.", "Great fit, fast shipping", 4))
	require.NoError(t, repo.Save(ctx, fb))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Shown)
	assert.Equal(t, 4, list[0].Rating)
	assert.Equal(t, "Ann L.", list[0].Name)

	require.NoError(t, repo.Delete(ctx, "t1"))
	assert.ErrorIs(t, repo.Delete(ctx, "t1"), shared.ErrNotFound)
}
