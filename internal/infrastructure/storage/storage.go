// Package storage uploads product and avatar images to object storage.
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	catalogapp "github.com/shopadmin/backend/internal/application/catalog"
	"github.com/shopadmin/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the image store selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (catalogapp.ImageStore, error) {
	switch cfg.Driver {
	case "s3":
		s, err := NewS3ImageStorage(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "unsigned":
		return NewUnsignedUploader(cfg, logger)
	case "", "stub":
		logger.Warn("Using stub image storage, uploaded files are discarded")
		return NewStubImageStorage(cfg.PublicBaseURL, cfg.Folder), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

var allowedExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// objectKey returns a collision free key under folder that keeps the
// extension of the uploaded file name
func objectKey(folder, name, contentType string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 6 {
		ext = allowedExtensions[contentType]
	}
	key := uuid.NewString() + ext
	if folder = strings.Trim(folder, "/"); folder != "" {
		key = path.Join(folder, key)
	}
	return key
}

// IsImageContentType reports whether an upload may be stored as an image
func IsImageContentType(contentType string) bool {
	_, ok := allowedExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ok
}
