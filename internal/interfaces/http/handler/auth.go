package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backend/internal/application/identity"
	"github.com/shopadmin/backend/internal/interfaces/http/dto"
	"github.com/shopadmin/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles admin sign in and sign out
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary      Admin login
// @Description  Authenticate the admin with username and password and open a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[LoginResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationFailed(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		AccessToken: result.Token,
		TokenType:   result.TokenType,
		SessionID:   result.SessionID,
		Username:    result.Username,
		ExpiresAt:   result.ExpiresAt,
	})
}

// Logout godoc
// @Summary      Admin logout
// @Description  Revoke the current session
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), session); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Logged out")
}

// Session godoc
// @Summary      Current session
// @Description  Describe the session the request was made with
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identity.SessionInfo]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	h.Success(c, h.authService.Describe(session))
}
