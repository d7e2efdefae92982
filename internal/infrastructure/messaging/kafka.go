package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaBroker writes messages to one topic, keyed by order id
type KafkaBroker struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaBroker creates a broker writing to topic on brokers
func NewKafkaBroker(brokers []string, topic string, logger *zap.Logger) (*KafkaBroker, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	log := logger.Named("kafka")
	log.Info("Kafka writer ready", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return &KafkaBroker{writer: w, logger: log}, nil
}

// Send writes msg with the subject in the event-type header
func (b *KafkaBroker) Send(ctx context.Context, msg Message) error {
	err := b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Headers: []kafka.Header{
			{Key: "subject", Value: []byte(msg.Subject)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer
func (b *KafkaBroker) Close() error {
	if err := b.writer.Close(); err != nil {
		return fmt.Errorf("closing kafka writer: %w", err)
	}
	return nil
}

var _ Broker = (*KafkaBroker)(nil)
