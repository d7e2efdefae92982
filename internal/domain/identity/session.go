package identity

import (
	"context"
	"time"
)

// Session is an authenticated admin session with a fixed expiry
type Session struct {
	ID        string
	Subject   string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsExpired returns true once now reaches ExpiresAt
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Remaining returns the time left before expiry, never negative
func (s *Session) Remaining(now time.Time) time.Duration {
	if s.IsExpired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// SessionRevoker records sessions that ended before their expiry (logout)
type SessionRevoker interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type sessionContextKey struct{}

// WithSession returns a context carrying s
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the session stored by WithSession
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}
