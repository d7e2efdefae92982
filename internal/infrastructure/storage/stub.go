package storage

import (
	"context"
	"io"
	"strings"

	catalogapp "github.com/shopadmin/backend/internal/application/catalog"
)

var _ catalogapp.ImageStore = (*StubImageStorage)(nil)

const defaultStubBaseURL = "https://storage.example.com"

// StubImageStorage discards uploads and returns a URL that would address them.
// Use it for development until a real storage backend is configured.
type StubImageStorage struct {
	baseURL string
	folder  string
}

// NewStubImageStorage creates a stub store; an empty baseURL uses a placeholder host
func NewStubImageStorage(baseURL, folder string) *StubImageStorage {
	if baseURL == "" {
		baseURL = defaultStubBaseURL
	}
	return &StubImageStorage{baseURL: strings.TrimRight(baseURL, "/"), folder: folder}
}

// Upload drains body and returns a generated URL
func (s *StubImageStorage) Upload(_ context.Context, name, contentType string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	return s.baseURL + "/" + objectKey(s.folder, name, contentType), nil
}
