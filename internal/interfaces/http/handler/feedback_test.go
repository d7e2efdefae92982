package handler

import (
	"context"
	"net/http"
	"testing"

	feedbackapp "github.com/shopadmin/backend/internal/application/feedback"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedbackApp(t *testing.T) *testApp {
	return newTestApp(t,
		seedTestimonial("t1", "Ana", 5, true),
		seedTestimonial("t2", "Ben", 3, false),
		seedTestimonial("t3", "Cleo", 4, true),
	)
}

func testimonialIDs(items []feedbackapp.TestimonialResponse) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestFeedbackHandler_List(t *testing.T) {
	app := newFeedbackApp(t)
	token := app.login()

	cases := []struct {
		filter string
		want   []string
	}{
		{"", []string{"t1", "t2", "t3"}},
		{"all", []string{"t1", "t2", "t3"}},
		{"visible", []string{"t1", "t3"}},
		{"Hidden", []string{"t2"}},
	}
	for _, tc := range cases {
		t.Run("filter "+tc.filter, func(t *testing.T) {
			w := app.do(http.MethodGet, "/api/v1/feedback?filter="+tc.filter, token, nil)
			require.Equal(t, http.StatusOK, w.Code)
			var items []feedbackapp.TestimonialResponse
			decodeData(t, w, &items)
			assert.Equal(t, tc.want, testimonialIDs(items))
		})
	}

	w := app.do(http.MethodGet, "/api/v1/feedback?filter=starred", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackHandler_Update(t *testing.T) {
	app := newFeedbackApp(t)
	token := app.login()

	w := app.do(http.MethodPatch, "/api/v1/feedback/t2", token, jsonBody(t, map[string]any{
		"desc":  "Fast delivery",
		"shown": true,
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var item feedbackapp.TestimonialResponse
	decodeData(t, w, &item)
	assert.Equal(t, feedbackapp.TestimonialResponse{ID: "t2", Name: "Ben", Desc: "Fast delivery", Rating: 3, Shown: true}, item)

	w = app.do(http.MethodPatch, "/api/v1/feedback/t2", token, jsonBody(t, map[string]any{"rating": 9}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPatch, "/api/v1/feedback/missing", token, jsonBody(t, map[string]any{"shown": false}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedbackHandler_ToggleAndDelete(t *testing.T) {
	app := newFeedbackApp(t)
	token := app.login()

	w := app.do(http.MethodPost, "/api/v1/feedback/t1/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var item feedbackapp.TestimonialResponse
	decodeData(t, w, &item)
	assert.False(t, item.Shown)

	w = app.do(http.MethodPost, "/api/v1/feedback/t1/toggle", token, nil)
	decodeData(t, w, &item)
	assert.True(t, item.Shown)

	w = app.do(http.MethodDelete, "/api/v1/feedback/t3", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, err := app.store.Get(context.Background(), persistence.TestimonialsCollection, "t3")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	w = app.do(http.MethodPost, "/api/v1/feedback/t3/toggle", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
