package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/shopadmin/backend/internal/application/catalog"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// ImageField is the multipart field carrying an uploaded image
const ImageField = "image"

var errNoImage = errors.New("no image in request")

// IsImageContentType reports whether contentType names an image format
func IsImageContentType(contentType string) bool {
	mediaType, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	return strings.HasPrefix(strings.TrimSpace(mediaType), "image/")
}

// openImage opens the image part of a multipart request. The returned close
// function must be called once the image has been uploaded. errNoImage is
// returned when the request has no file in the field.
func openImage(c *gin.Context, field string, maxSize int64) (*catalogapp.Image, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, errNoImage
		}
		if limit, ok := middleware.BodyTooLarge(err); ok {
			return nil, nil, shared.NewDomainError("PAYLOAD_TOO_LARGE",
				fmt.Sprintf("Request body exceeds the maximum size of %d bytes", limit))
		}
		return nil, nil, shared.NewDomainError("INVALID_IMAGE", "Could not read the uploaded image")
	}
	if maxSize > 0 && header.Size > maxSize {
		return nil, nil, shared.NewDomainError("PAYLOAD_TOO_LARGE",
			fmt.Sprintf("Image exceeds the maximum size of %d bytes", maxSize))
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, shared.NewDomainError("INVALID_IMAGE", "Could not read the uploaded image")
	}
	contentType, err := detectContentType(header, file)
	if err != nil {
		_ = file.Close()
		return nil, nil, shared.NewDomainError("INVALID_IMAGE", "Could not read the uploaded image")
	}
	if !IsImageContentType(contentType) {
		_ = file.Close()
		return nil, nil, shared.NewDomainError("INVALID_IMAGE", "Uploaded file is not an image")
	}

	image := &catalogapp.Image{
		Name:        filepath.Base(header.Filename),
		ContentType: contentType,
		Body:        file,
	}
	return image, func() { _ = file.Close() }, nil
}

// detectContentType trusts the part header when it names an image and
// sniffs the first bytes otherwise
func detectContentType(header *multipart.FileHeader, file multipart.File) (string, error) {
	if ct := header.Header.Get("Content-Type"); IsImageContentType(ct) {
		return ct, nil
	}
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && n == 0 {
		return "", err
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// parseDecimal reads a decimal form value. Blank values are an error.
func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_"+strings.ToUpper(field),
			fmt.Sprintf("%s must be a number", field))
	}
	return d, nil
}

// optionalForm returns a pointer to the form value when the field is present
func optionalForm(c *gin.Context, field string) *string {
	value, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	return &value
}
