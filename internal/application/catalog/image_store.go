package catalog

import (
	"context"
	"io"
)

// ImageStore uploads image files and returns the public URL they are served from
type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// Image is an uploaded file waiting to be stored
type Image struct {
	Name        string
	ContentType string
	Body        io.Reader
}
