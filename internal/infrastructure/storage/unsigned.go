package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	catalogapp "github.com/shopadmin/backend/internal/application/catalog"
	"github.com/shopadmin/backend/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var _ catalogapp.ImageStore = (*UnsignedUploader)(nil)

// UnsignedUploader posts images to an image CDN upload endpoint that accepts
// unsigned uploads restricted by a named preset. The form carries the fields
// file, upload_preset and folder; the response names the stored file in
// secure_url.
type UnsignedUploader struct {
	client *http.Client
	url    string
	preset string
	folder string
	logger *zap.Logger
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewUnsignedUploader creates an uploader from configuration
func NewUnsignedUploader(cfg config.StorageConfig, logger *zap.Logger) (*UnsignedUploader, error) {
	if cfg.UploadURL == "" {
		return nil, errors.New("storage upload_url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &UnsignedUploader{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		url:    cfg.UploadURL,
		preset: cfg.UploadPreset,
		folder: cfg.Folder,
		logger: logger.Named("uploader"),
	}, nil
}

// Upload streams body as a multipart form and returns the secure_url of the stored file
func (u *UnsignedUploader) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(form, name, contentType, body, u.preset, u.folder))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, pr)
	if err != nil {
		_ = pr.Close()
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		_ = pr.Close()
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode upload response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode/100 != 2 || out.SecureURL == "" {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("image upload rejected with status %d: %s", resp.StatusCode, msg)
	}

	u.logger.Debug("Image uploaded", zap.String("url", out.SecureURL))
	return out.SecureURL, nil
}

func writeUploadForm(form *multipart.Writer, name, contentType string, body io.Reader, preset, folder string) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	if err := form.WriteField("upload_preset", preset); err != nil {
		return err
	}
	if folder != "" {
		if err := form.WriteField("folder", folder); err != nil {
			return err
		}
	}
	return form.Close()
}
