package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type natsConn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSBroker publishes messages on core NATS subjects
type NATSBroker struct {
	conn         natsConn
	flushTimeout time.Duration
	logger       *zap.Logger
}

// ConnectNATS dials url, retrying a few times before giving up
func ConnectNATS(ctx context.Context, url string, logger *zap.Logger) (*NATSBroker, error) {
	log := logger.Named("nats")

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		nc, err := nats.Connect(url,
			nats.Name("shop-admin"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Warn("NATS disconnected", zap.Error(err))
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
			}),
		)
		if err == nil {
			log.Info("Connected to NATS", zap.String("url", url))
			return newNATSBroker(nc, log), nil
		}
		lastErr = err
		log.Warn("Failed to connect to NATS", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to NATS: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("failed to connect to NATS after retries: %w", lastErr)
}

func newNATSBroker(conn natsConn, logger *zap.Logger) *NATSBroker {
	return &NATSBroker{conn: conn, flushTimeout: 2 * time.Second, logger: logger}
}

// Send publishes msg.Value on msg.Subject and waits for the server to acknowledge the flush
func (b *NATSBroker) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.conn.Publish(msg.Subject, msg.Value); err != nil {
		return fmt.Errorf("nats publish %s: %w", msg.Subject, err)
	}
	timeout := b.flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := b.conn.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}

// Close drops the connection
func (b *NATSBroker) Close() error {
	b.conn.Close()
	b.logger.Info("NATS connection closed")
	return nil
}

var _ Broker = (*NATSBroker)(nil)
