package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopadmin/backend/internal/domain/identity"
)

// RedisSessionRevoker keeps revoked session ids in Redis until the session
// would have expired anyway
type RedisSessionRevoker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSessionRevoker creates a revocation list on an existing Redis client
func NewRedisSessionRevoker(client *redis.Client) *RedisSessionRevoker {
	return &RedisSessionRevoker{
		client:    client,
		keyPrefix: "session:revoked:",
	}
}

// Revoke adds the session id to the revocation list for ttl
func (r *RedisSessionRevoker) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.keyPrefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsRevoked checks whether the session id is on the revocation list
func (r *RedisSessionRevoker) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.keyPrefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return exists > 0, nil
}

var _ identity.SessionRevoker = (*RedisSessionRevoker)(nil)

// InMemorySessionRevoker keeps revoked session ids in process memory.
// WARNING: revocations are not shared between instances.
type InMemorySessionRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time // session id -> expiration time
	now     func() time.Time
}

// NewInMemorySessionRevoker creates an empty revocation list
func NewInMemorySessionRevoker() *InMemorySessionRevoker {
	return &InMemorySessionRevoker{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke adds the session id to the revocation list for ttl
func (r *InMemorySessionRevoker) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, exp := range r.revoked {
		if now.After(exp) {
			delete(r.revoked, id)
		}
	}
	r.revoked[sessionID] = now.Add(ttl)
	return nil
}

// IsRevoked checks whether the session id is revoked and not yet expired
func (r *InMemorySessionRevoker) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiration, exists := r.revoked[sessionID]
	if !exists {
		return false, nil
	}
	if r.now().After(expiration) {
		delete(r.revoked, sessionID)
		return false, nil
	}
	return true, nil
}

var _ identity.SessionRevoker = (*InMemorySessionRevoker)(nil)
