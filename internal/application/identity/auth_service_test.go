package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopadmin/backend/internal/domain/identity"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/auth"
	"github.com/shopadmin/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type authFixture struct {
	admins  *MockAdminRepository
	jwt     *auth.JWTService
	revoker *auth.InMemorySessionRevoker
	service *AuthService
	clock   time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		admins:  new(MockAdminRepository),
		revoker: auth.NewInMemorySessionRevoker(),
		clock:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.jwt = auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-for-sessions",
		Issuer:     "shop-admin",
		SessionTTL: time.Hour,
	}).WithClock(func() time.Time { return f.clock })
	f.service = NewAuthService(f.admins, f.jwt, f.revoker, zap.NewNop())
	f.service.now = func() time.Time { return f.clock }
	return f
}

func hashedAdmin(t *testing.T, password string) *identity.Admin {
	t.Helper()
	admin := &identity.Admin{ID: identity.AdminID, Username: "admin"}
	require.NoError(t, admin.SetPassword(password))
	return admin
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials open a session", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(hashedAdmin(t, "secret123"), nil)

		result, err := f.service.Login(ctx, LoginInput{Username: "admin", Password: "secret123", IP: "127.0.0.1"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, "admin", result.Username)
		assert.Equal(t, f.clock.Add(time.Hour), result.ExpiresAt)
		f.admins.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

		session, err := f.service.ValidateSession(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.SessionID, session.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(hashedAdmin(t, "secret123"), nil)

		_, err := f.service.Login(ctx, LoginInput{Username: "admin", Password: "nope"})
		assertCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("wrong username gives the same error", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(hashedAdmin(t, "secret123"), nil)

		_, err := f.service.Login(ctx, LoginInput{Username: "root", Password: "secret123"})
		assertCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("missing admin account", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(nil, shared.ErrNotFound)

		_, err := f.service.Login(ctx, LoginInput{Username: "admin", Password: "secret123"})
		assertCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(nil, shared.ErrUnavailable)

		_, err := f.service.Login(ctx, LoginInput{Username: "admin", Password: "secret123"})
		assert.ErrorIs(t, err, shared.ErrUnavailable)
	})

	t.Run("legacy password is re-hashed", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(&identity.Admin{ID: identity.AdminID, Username: "admin", PasswordHash: "plain-pass"}, nil)
		f.admins.On("Save", mock.Anything, mock.MatchedBy(func(a *identity.Admin) bool {
			return !a.HasLegacyPassword()
		})).Return(nil)

		_, err := f.service.Login(ctx, LoginInput{Username: "admin", Password: "plain-pass"})
		require.NoError(t, err)
		f.admins.AssertExpectations(t)
	})

	t.Run("re-hash failure does not block login", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(&identity.Admin{ID: identity.AdminID, Username: "admin", PasswordHash: "plain-pass"}, nil)
		f.admins.On("Save", mock.Anything, mock.Anything).Return(errors.New("write failed"))

		result, err := f.service.Login(ctx, LoginInput{Username: "admin", Password: "plain-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.service.ValidateSession(ctx, "not-a-token")
		assertCode(t, err, "UNAUTHORIZED")
	})

	t.Run("expired session", func(t *testing.T) {
		f := newAuthFixture(t)
		token, _, err := f.jwt.Issue(identity.AdminID, "admin")
		require.NoError(t, err)

		f.clock = f.clock.Add(2 * time.Hour)
		_, err = f.service.ValidateSession(ctx, token)
		assertCode(t, err, "SESSION_EXPIRED")
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		f := newAuthFixture(t)
		token, session, err := f.jwt.Issue(identity.AdminID, "admin")
		require.NoError(t, err)

		require.NoError(t, f.service.Logout(ctx, session))
		_, err = f.service.ValidateSession(ctx, token)
		assertCode(t, err, "SESSION_REVOKED")
	})
}

func TestAuthService_Describe(t *testing.T) {
	f := newAuthFixture(t)
	_, session, err := f.jwt.Issue(identity.AdminID, "admin")
	require.NoError(t, err)

	f.clock = f.clock.Add(15 * time.Minute)
	info := f.service.Describe(session)
	assert.Equal(t, "admin", info.Username)
	assert.Equal(t, 45*time.Minute/time.Second, info.Remaining)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a hashed account when none exists", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(nil, shared.ErrNotFound)
		f.admins.On("Save", mock.Anything, mock.MatchedBy(func(a *identity.Admin) bool {
			ok, legacy := a.VerifyPassword("s3cret-pass")
			return a.ID == identity.AdminID && a.Username == "owner" && ok && !legacy
		})).Return(nil)

		created, err := f.service.EnsureAdmin(ctx, " owner ", "s3cret-pass")
		require.NoError(t, err)
		assert.True(t, created)
		f.admins.AssertExpectations(t)
	})

	t.Run("keeps an existing account", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(hashedAdmin(t, "old-password"), nil)

		created, err := f.service.EnsureAdmin(ctx, "owner", "s3cret-pass")
		require.NoError(t, err)
		assert.False(t, created)
		f.admins.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("no credentials configured", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(nil, shared.ErrNotFound)

		created, err := f.service.EnsureAdmin(ctx, "", "")
		require.NoError(t, err)
		assert.False(t, created)
		f.admins.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(nil, shared.ErrUnavailable)

		_, err := f.service.EnsureAdmin(ctx, "owner", "s3cret-pass")
		assert.ErrorIs(t, err, shared.ErrUnavailable)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		f.admins.On("Get", mock.Anything).Return(nil, shared.ErrNotFound)

		_, err := f.service.EnsureAdmin(ctx, "owner", "abc")
		require.Error(t, err)
		f.admins.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
