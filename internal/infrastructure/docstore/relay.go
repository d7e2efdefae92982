package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRelayChannel is the pub/sub channel used when none is configured
const DefaultRelayChannel = "docstore:changes"

// Notifier receives change notifications for collections
type Notifier interface {
	Notify(collection string)
}

// RedisRelay carries change notifications between processes sharing one
// database. Each message is "<instance>|<collection>"; a relay ignores the
// messages it published itself.
type RedisRelay struct {
	client     *redis.Client
	channel    string
	instanceID string
	logger     *zap.Logger
}

// NewRedisRelay creates a relay on client
func NewRedisRelay(client *redis.Client, channel string, logger *zap.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		logger:     logger,
	}
}

// Publish announces a local change to collection
func (r *RedisRelay) Publish(ctx context.Context, collection string) error {
	if err := r.client.Publish(ctx, r.channel, r.encode(collection)).Err(); err != nil {
		return fmt.Errorf("failed to publish change for %s: %w", collection, err)
	}
	return nil
}

// Run forwards changes published by other instances to target until ctx
// is done
func (r *RedisRelay) Run(ctx context.Context, target Notifier) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.logger.Info("Document change relay started", zap.String("channel", r.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			collection, remote := r.decode(msg.Payload)
			if !remote {
				continue
			}
			target.Notify(collection)
		}
	}
}

func (r *RedisRelay) encode(collection string) string {
	return r.instanceID + "|" + collection
}

// decode returns the collection named by payload and whether it came from
// another instance
func (r *RedisRelay) decode(payload string) (string, bool) {
	sender, collection, ok := strings.Cut(payload, "|")
	if !ok || collection == "" {
		r.logger.Warn("Ignoring malformed change message", zap.String("payload", payload))
		return "", false
	}
	if ValidateCollection(collection) != nil {
		r.logger.Warn("Ignoring change for invalid collection", zap.String("collection", collection))
		return "", false
	}
	return collection, sender != r.instanceID
}
