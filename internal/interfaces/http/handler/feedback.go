package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backend/internal/application/feedback"
)

// FeedbackHandler moderates customer testimonials
type FeedbackHandler struct {
	BaseHandler
	service *feedback.TestimonialService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(service *feedback.TestimonialService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// List godoc
// @Summary      List testimonials
// @Tags         feedback
// @Produce      json
// @Param        filter query string false "all, visible or hidden"
// @Success      200 {object} APIResponse[[]feedback.TestimonialResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("filter"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update godoc
// @Summary      Edit a testimonial
// @Description  Change name, text, rating or visibility. Omitted fields keep their value.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id path string true "Testimonial ID"
// @Param        request body feedback.UpdateTestimonialRequest true "Fields to change"
// @Success      200 {object} APIResponse[feedback.TestimonialResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /feedback/{id} [patch]
func (h *FeedbackHandler) Update(c *gin.Context) {
	var req feedback.UpdateTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationFailed(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Toggle godoc
// @Summary      Toggle testimonial visibility
// @Tags         feedback
// @Produce      json
// @Param        id path string true "Testimonial ID"
// @Success      200 {object} APIResponse[feedback.TestimonialResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /feedback/{id}/toggle [post]
func (h *FeedbackHandler) Toggle(c *gin.Context) {
	item, err := h.service.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete godoc
// @Summary      Delete a testimonial
// @Tags         feedback
// @Produce      json
// @Param        id path string true "Testimonial ID"
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /feedback/{id} [delete]
func (h *FeedbackHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Testimonial deleted")
}
