package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backend/internal/application/dashboard"
)

// DashboardHandler serves the landing page counters
type DashboardHandler struct {
	BaseHandler
	service *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary      Dashboard summary
// @Description  Order totals by origin and status, customer, product and testimonial counts
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[dashboard.Summary]
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
