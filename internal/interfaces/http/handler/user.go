package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backend/internal/application/account"
	"github.com/shopadmin/backend/internal/interfaces/http/dto"
)

// UserListQuery holds the filters of the customer list
type UserListQuery struct {
	dto.PageQuery
	Status string `form:"status"`
}

// UserHandler manages customer accounts
type UserHandler struct {
	BaseHandler
	userService *account.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *account.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List godoc
// @Summary      List customers
// @Description  Every customer with an activity status derived from the last activity
// @Tags         users
// @Produce      json
// @Param        status query string false "all, active or inactive"
// @Param        page query int false "1-based page number"
// @Success      200 {object} PagedResponse[account.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var q UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationFailed(c, err)
		return
	}
	page, err := h.userService.List(c.Request.Context(), account.ListInput{Status: q.Status, Page: q.PageNumber()})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Delete godoc
// @Summary      Delete a customer
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "User deleted")
}
