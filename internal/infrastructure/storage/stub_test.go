package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/shopadmin/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStubImageStorage_Upload(t *testing.T) {
	store := NewStubImageStorage("", "avatars")

	url, err := store.Upload(context.Background(), "me.webp", "image/webp", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://storage.example.com/avatars/"))
	assert.True(t, strings.HasSuffix(url, ".webp"))
}

func TestObjectKey(t *testing.T) {
	assert.True(t, strings.HasSuffix(objectKey("", "noext", "image/png"), ".png"))
	assert.False(t, strings.Contains(objectKey("", "noext", "image/png"), "/"))
	assert.True(t, strings.HasPrefix(objectKey("/a/b/", "x.gif", "image/gif"), "a/b/"))
	assert.NotEqual(t, objectKey("", "x.gif", "image/gif"), objectKey("", "x.gif", "image/gif"))
}

func TestIsImageContentType(t *testing.T) {
	assert.True(t, IsImageContentType("image/jpeg"))
	assert.True(t, IsImageContentType(" IMAGE/PNG "))
	assert.False(t, IsImageContentType("application/pdf"))
}

func TestNew_SelectsDriver(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{Driver: "stub"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &StubImageStorage{}, store)

	store, err = New(context.Background(), config.StorageConfig{Driver: "unsigned", UploadURL: "http://upload.test"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &UnsignedUploader{}, store)

	_, err = New(context.Background(), config.StorageConfig{Driver: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
