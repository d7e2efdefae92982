// Package notify forwards order status changes to the customer mail relay.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	orderapp "github.com/shopadmin/backend/internal/application/order"
	"github.com/shopadmin/backend/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const sendOrderUpdatePath = "/send-order-update"

// New returns an HTTP notifier when notifications are enabled and a no-op
// notifier otherwise
func New(cfg config.NotifyConfig, logger *zap.Logger) orderapp.Notifier {
	if !cfg.Enabled {
		logger.Info("Customer notifications disabled")
		return Noop{}
	}
	return NewHTTPNotifier(cfg, logger)
}

// HTTPNotifier posts status notifications as JSON to the mail relay
type HTTPNotifier struct {
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

type relayResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewHTTPNotifier creates a notifier that posts to {BaseURL}/send-order-update
func NewHTTPNotifier(cfg config.NotifyConfig, logger *zap.Logger) *HTTPNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPNotifier{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + sendOrderUpdatePath,
		logger:   logger.Named("notify"),
	}
}

// NotifyStatusChange sends n. Any non-2xx response is an error carrying the
// relay's error text.
func (n *HTTPNotifier) NotifyStatusChange(ctx context.Context, msg orderapp.StatusNotification) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send order update: %w", err)
	}
	defer resp.Body.Close()

	var out relayResponse
	// body may be empty or not JSON; the status code decides
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := out.Error
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("order update rejected with status %d: %s", resp.StatusCode, reason)
	}

	n.logger.Debug("Order update email sent",
		zap.String("order_id", msg.OrderID),
		zap.String("status", msg.Status),
		zap.String("relay_message", out.Message),
	)
	return nil
}

// Noop discards notifications
type Noop struct{}

func (Noop) NotifyStatusChange(context.Context, orderapp.StatusNotification) error {
	return nil
}

var (
	_ orderapp.Notifier = (*HTTPNotifier)(nil)
	_ orderapp.Notifier = Noop{}
)
