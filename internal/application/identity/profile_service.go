package identity

import (
	"context"

	catalogapp "github.com/shopadmin/backend/internal/application/catalog"
	"github.com/shopadmin/backend/internal/domain/identity"
	"github.com/shopadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProfileService manages the admin profile
type ProfileService struct {
	admins identity.AdminRepository
	images catalogapp.ImageStore
	logger *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(admins identity.AdminRepository, images catalogapp.ImageStore, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{admins: admins, images: images, logger: logger}
}

// Get returns the admin profile
func (s *ProfileService) Get(ctx context.Context) (*ProfileResponse, error) {
	admin, err := s.admins.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{Username: admin.Username, ImageURL: admin.ImageURL}, nil
}

// UploadAvatar stores a new profile picture
func (s *ProfileService) UploadAvatar(ctx context.Context, image catalogapp.Image) (*ProfileResponse, error) {
	admin, err := s.admins.Get(ctx)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Upload(ctx, image.Name, image.ContentType, image.Body)
	if err != nil {
		s.logger.Error("Failed to upload avatar", zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Failed to upload profile picture").WithCause(err)
	}
	if err := admin.SetImage(url); err != nil {
		return nil, err
	}
	if err := s.admins.Save(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info("Admin avatar updated")
	return &ProfileResponse{Username: admin.Username, ImageURL: admin.ImageURL}, nil
}

// ChangePassword replaces the admin password after checking the current one
func (s *ProfileService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	admin, err := s.admins.Get(ctx)
	if err != nil {
		return err
	}
	if err := admin.ChangePassword(input.CurrentPassword, input.NewPassword, input.ConfirmPassword); err != nil {
		return err
	}
	if err := s.admins.Save(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("Admin password changed")
	return nil
}
