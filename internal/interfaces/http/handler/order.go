package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/shopadmin/backend/internal/application/order"
	"github.com/shopadmin/backend/internal/interfaces/http/dto"
)

// OrderListQuery is the query string of the order list
type OrderListQuery struct {
	dto.PageQuery
	Status string `form:"status" binding:"omitempty,order_status"`
}

// ChangeStatusRequest represents the request body of a status change
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// OrderHandler serves the merged order list and order operations
type OrderHandler struct {
	BaseHandler
	queries   *orderapp.QueryService
	lifecycle *orderapp.LifecycleService
	archiver  *orderapp.ArchiveService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	queries *orderapp.QueryService,
	lifecycle *orderapp.LifecycleService,
	archiver *orderapp.ArchiveService,
) *OrderHandler {
	return &OrderHandler{queries: queries, lifecycle: lifecycle, archiver: archiver}
}

// List godoc
// @Summary      List orders
// @Description  One page of live and archived orders, newest first
// @Tags         orders
// @Produce      json
// @Param        status query string false "All or one status"
// @Param        page query int false "1-based page number"
// @Success      200 {object} PagedResponse[orderapp.OrderView]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var q OrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationFailed(c, err)
		return
	}
	page, err := h.queries.List(c.Request.Context(), orderapp.ListInput{Status: q.Status, Page: q.PageNumber()})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Get godoc
// @Summary      Get an order
// @Description  A live order of the customer, or its archived copy
// @Tags         orders
// @Produce      json
// @Param        userId path string true "Customer ID"
// @Param        orderId path string true "Order ID"
// @Success      200 {object} APIResponse[orderapp.OrderView]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{userId}/{orderId} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	view, err := h.queries.GetOrder(c.Request.Context(), c.Param("userId"), c.Param("orderId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ChangeStatus godoc
// @Summary      Change order status
// @Description  Move a live order to a new status and notify the customer
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        userId path string true "Customer ID"
// @Param        orderId path string true "Order ID"
// @Param        request body ChangeStatusRequest true "New status"
// @Success      200 {object} APIResponse[orderapp.OrderView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{userId}/{orderId}/status [patch]
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationFailed(c, err)
		return
	}
	view, err := h.lifecycle.ChangeStatus(c.Request.Context(), orderapp.ChangeStatusInput{
		UserID:  c.Param("userId"),
		OrderID: c.Param("orderId"),
		Status:  req.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Archive godoc
// @Summary      Archive an order
// @Description  Move a completed or cancelled order to its archive. Safe to retry.
// @Tags         orders
// @Produce      json
// @Param        userId path string true "Customer ID"
// @Param        orderId path string true "Order ID"
// @Success      200 {object} APIResponse[orderapp.OrderView]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{userId}/{orderId}/archive [post]
func (h *OrderHandler) Archive(c *gin.Context) {
	view, err := h.archiver.Archive(c.Request.Context(), c.Param("userId"), c.Param("orderId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// History godoc
// @Summary      Order history
// @Description  One page of archived orders, newest first
// @Tags         orders
// @Produce      json
// @Param        page query int false "1-based page number"
// @Success      200 {object} PagedResponse[orderapp.OrderView]
// @Security     BearerAuth
// @Router       /orders/history [get]
func (h *OrderHandler) History(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationFailed(c, err)
		return
	}
	page, err := h.queries.History(c.Request.Context(), q.PageNumber())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// ExportHistory godoc
// @Summary      Export order history
// @Description  Every archived order as an Excel workbook
// @Tags         orders
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /orders/history/export [get]
func (h *OrderHandler) ExportHistory(c *gin.Context) {
	views, err := h.queries.AllHistory(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	file, err := BuildOrderWorkbook(views)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+HistoryExportFilename)
	c.Header("Content-Type", XLSXContentType)
	if err := file.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
