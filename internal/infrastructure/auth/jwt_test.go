package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopadmin/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-that-is-long-enough-32",
		Issuer:     "shop-admin",
		SessionTTL: time.Hour,
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, session, err := svc.Issue("admin#1", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, time.Hour, session.ExpiresAt.Sub(session.IssuedAt))

	validated, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, validated.ID)
	assert.Equal(t, "admin#1", validated.Subject)
	assert.Equal(t, "admin", validated.Username)
	assert.True(t, session.ExpiresAt.Equal(validated.ExpiresAt))
}

func TestJWTService_ExpiredToken(t *testing.T) {
	now := time.Now()
	svc := newTestJWTService().WithClock(func() time.Time { return now })

	token, _, err := svc.Issue("admin#1", "admin")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, _, err := newTestJWTService().Issue("admin#1", "admin")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-that-is-long-enough", Issuer: "shop-admin", SessionTTL: time.Hour})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := newTestJWTService()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong token type", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "id",
				Issuer:    "shop-admin",
				Subject:   "admin#1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			TokenType: "refresh",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "id", Issuer: "shop-admin", Subject: "admin#1"},
			TokenType:        TokenTypeSession,
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-that-is-long-enough-32", Issuer: "someone-else", SessionTTL: time.Hour})
		token, _, err := other.Issue("admin#1", "admin")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestJWTService_GeneratedSecret(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Issuer: "shop-admin", SessionTTL: time.Minute})
	assert.Len(t, svc.secret, 32)

	token, _, err := svc.Issue("admin#1", "admin")
	require.NoError(t, err)
	_, err = svc.Validate(token)
	assert.NoError(t, err)
}
