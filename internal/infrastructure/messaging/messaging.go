// Package messaging forwards order domain events to an external broker.
package messaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/config"
	"github.com/shopadmin/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

// Message is one encoded event ready for a broker
type Message struct {
	// Subject is the routing name: a NATS subject, or a header on Kafka
	Subject string
	// Key groups messages of one order onto one partition
	Key   string
	Value []byte
}

// Broker sends messages to an external system
type Broker interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// NewBroker connects the broker selected by cfg.Driver. It returns nil for "none".
func NewBroker(ctx context.Context, cfg config.MessagingConfig, logger *zap.Logger) (Broker, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "nats":
		b, err := ConnectNATS(ctx, cfg.NATSURL, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "kafka":
		b, err := NewKafkaBroker(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown messaging driver %q", cfg.Driver)
}

// Forwarder is an event handler that encodes order events and sends them to a broker
type Forwarder struct {
	broker     Broker
	serializer *event.Serializer
	prefix     string
	logger     *zap.Logger
}

// NewForwarder creates a forwarder. Subjects are prefix + "." + the snake
// cased event type, e.g. shop.orders.order_status_changed.
func NewForwarder(broker Broker, serializer *event.Serializer, prefix string, logger *zap.Logger) *Forwarder {
	return &Forwarder{
		broker:     broker,
		serializer: serializer,
		prefix:     strings.TrimSuffix(prefix, "."),
		logger:     logger.Named("forwarder"),
	}
}

func (f *Forwarder) EventTypes() []string {
	return []string{order.EventTypeOrderStatusChanged, order.EventTypeOrderArchived}
}

func (f *Forwarder) Handle(ctx context.Context, e shared.DomainEvent) error {
	data, err := f.serializer.Encode(e)
	if err != nil {
		return err
	}

	msg := Message{
		Subject: Subject(f.prefix, e.EventType()),
		Key:     e.AggregateID(),
		Value:   data,
	}
	if err := f.broker.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to forward %s: %w", e.EventType(), err)
	}

	f.logger.Debug("Event forwarded",
		zap.String("subject", msg.Subject),
		zap.String("event_id", e.EventID().String()),
	)
	return nil
}

var _ shared.EventHandler = (*Forwarder)(nil)

// Subject builds the routing name for eventType under prefix
func Subject(prefix, eventType string) string {
	var b strings.Builder
	for i, r := range eventType {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	if prefix == "" {
		return b.String()
	}
	return prefix + "." + b.String()
}
