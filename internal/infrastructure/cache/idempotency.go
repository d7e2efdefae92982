package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const idempotencyKeyPrefix = "event:processed:"

// NewIdempotencyStore returns a Redis backed store when client is set and an
// in-memory store otherwise
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		return NewRedisIdempotencyStore(client)
	}
	if logger != nil {
		logger.Warn("Redis disabled, event deduplication is local to this instance")
	}
	return NewInMemoryIdempotencyStore()
}

// RedisIdempotencyStore records processed event ids in Redis, so every
// instance skips an event another instance already handled
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore creates a store on an existing client
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

// MarkProcessed records eventID for ttl. It returns false when the event was
// already recorded.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKeyPrefix+eventID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return ok, nil
}

// IsProcessed checks whether eventID was recorded
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, idempotencyKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if event is processed: %w", err)
	}
	return n > 0, nil
}

// Close is a no-op; the client is shared
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// sweepEvery is the number of writes between sweeps of expired entries
const sweepEvery = 256

// InMemoryIdempotencyStore records processed event ids in process memory
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // event id -> expiration
	writes  int
	now     func() time.Time
}

// NewInMemoryIdempotencyStore creates an empty store
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// MarkProcessed records eventID for ttl. It returns false when the event was
// already recorded and has not expired.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.entries[eventID]; ok && now.Before(exp) {
		return false, nil
	}
	s.entries[eventID] = now.Add(ttl)

	s.writes++
	if s.writes%sweepEvery == 0 {
		for id, exp := range s.entries {
			if !now.Before(exp) {
				delete(s.entries, id)
			}
		}
	}
	return true, nil
}

// IsProcessed checks whether eventID was recorded and has not expired
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[eventID]
	return ok && s.now().Before(exp), nil
}

// Len returns the number of recorded ids, expired ones included until swept
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close releases nothing; it exists to satisfy shared.IdempotencyStore
func (s *InMemoryIdempotencyStore) Close() error {
	return nil
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
