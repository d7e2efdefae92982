package handler

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImageContentType(t *testing.T) {
	assert.True(t, IsImageContentType("image/png"))
	assert.True(t, IsImageContentType(" Image/JPEG; charset=binary"))
	assert.False(t, IsImageContentType("text/plain"))
	assert.False(t, IsImageContentType(""))
	assert.False(t, IsImageContentType("application/octet-stream"))
}

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("price", " 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	_, err = parseDecimal("price", "")
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PRICE", domainErr.Code)
}

// imageContext builds a gin context around a multipart request
func imageContext(t *testing.T, files ...formFile) *gin.Context {
	t.Helper()
	body, contentType := multipartBody(t, map[string]string{"name": "x"}, files...)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestOpenImage(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, _, err := openImage(imageContext(t), ImageField, 1024)
		assert.True(t, errors.Is(err, errNoImage))
	})

	t.Run("sniffed content type keeps the body intact", func(t *testing.T) {
		image, closeImage, err := openImage(imageContext(t, formFile{field: ImageField, name: "dir/a.png", data: pngHeader}), ImageField, 1024)
		require.NoError(t, err)
		defer closeImage()
		assert.Equal(t, "a.png", image.Name)
		assert.Equal(t, "image/png", image.ContentType)
		data, err := io.ReadAll(image.Body)
		require.NoError(t, err)
		assert.Equal(t, pngHeader, data)
	})

	t.Run("declared image type is trusted", func(t *testing.T) {
		image, closeImage, err := openImage(imageContext(t,
			formFile{field: ImageField, name: "a.webp", contentType: "image/webp", data: []byte("RIFF")}), ImageField, 1024)
		require.NoError(t, err)
		defer closeImage()
		assert.Equal(t, "image/webp", image.ContentType)
	})

	t.Run("too large", func(t *testing.T) {
		_, _, err := openImage(imageContext(t, formFile{field: ImageField, name: "a.png", data: pngHeader}), ImageField, 4)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PAYLOAD_TOO_LARGE", domainErr.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		_, _, err := openImage(imageContext(t, formFile{field: ImageField, name: "a.txt", data: []byte("hello")}), ImageField, 1024)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_IMAGE", domainErr.Code)
	})
}
