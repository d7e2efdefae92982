package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backend/internal/application/identity"
	"github.com/shopadmin/backend/internal/domain/shared"
)

// ProfileHandler serves the admin profile
type ProfileHandler struct {
	BaseHandler
	profileService *identity.ProfileService
	maxUploadSize  int64
}

// NewProfileHandler creates a new profile handler. maxUploadSize caps the
// avatar file, zero disables the check.
func NewProfileHandler(profileService *identity.ProfileService, maxUploadSize int64) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, maxUploadSize: maxUploadSize}
}

// Get godoc
// @Summary      Get admin profile
// @Tags         profile
// @Produce      json
// @Success      200 {object} APIResponse[identity.ProfileResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UploadAvatar godoc
// @Summary      Upload admin avatar
// @Description  Store a new profile image and point the profile at it
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        image formData file true "Avatar image"
// @Success      200 {object} APIResponse[identity.ProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	image, closeImage, err := openImage(c, ImageField, h.maxUploadSize)
	if errors.Is(err, errNoImage) {
		h.HandleError(c, shared.NewDomainError("INVALID_IMAGE", "An image file is required"))
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer closeImage()

	profile, err := h.profileService.UploadAvatar(c.Request.Context(), *image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// ChangePassword godoc
// @Summary      Change admin password
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Current and new password"
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile/password [put]
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationFailed(c, err)
		return
	}

	err := h.profileService.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Password updated")
}
