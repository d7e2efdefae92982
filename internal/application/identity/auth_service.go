package identity

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/shopadmin/backend/internal/domain/identity"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles admin sign-in, session validation and sign-out
type AuthService struct {
	admins     identity.AdminRepository
	jwtService *auth.JWTService
	revoker    identity.SessionRevoker
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	admins identity.AdminRepository,
	jwtService *auth.JWTService,
	revoker identity.SessionRevoker,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		admins:     admins,
		jwtService: jwtService,
		revoker:    revoker,
		logger:     logger,
		now:        time.Now,
	}
}

func invalidCredentials() error {
	return shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
}

// Login checks the credentials against the admin account and opens a session.
// A password still stored in plain text is re-hashed after it matched once.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username), zap.String("ip", input.IP))

	admin, err := s.admins.Get(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Admin account is not provisioned")
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(admin.Username), []byte(input.Username)) != 1 {
		s.logger.Warn("Unknown username during login", zap.String("username", input.Username), zap.String("ip", input.IP))
		return nil, invalidCredentials()
	}

	ok, legacy := admin.VerifyPassword(input.Password)
	if !ok {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username), zap.String("ip", input.IP))
		return nil, invalidCredentials()
	}
	if legacy {
		s.upgradePassword(ctx, admin, input.Password)
	}

	token, session, err := s.jwtService.Issue(admin.ID, admin.Username)
	if err != nil {
		s.logger.Error("Failed to issue session token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create session")
	}

	s.logger.Info("Admin logged in",
		zap.String("username", admin.Username),
		zap.String("session_id", session.ID),
		zap.Time("expires_at", session.ExpiresAt),
	)
	return &LoginResult{
		Token:     token,
		TokenType: "Bearer",
		SessionID: session.ID,
		Username:  admin.Username,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *AuthService) upgradePassword(ctx context.Context, admin *identity.Admin, password string) {
	if err := admin.SetPassword(password); err != nil {
		s.logger.Warn("Legacy admin password could not be hashed", zap.Error(err))
		return
	}
	if err := s.admins.Save(ctx, admin); err != nil {
		s.logger.Error("Failed to store re-hashed admin password", zap.Error(err))
		return
	}
	s.logger.Info("Legacy admin password re-hashed")
}

// EnsureAdmin creates the admin account from username and password when the
// store has none. An existing account is never overwritten. created reports
// whether a new account was written.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (created bool, err error) {
	_, err = s.admins.Get(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.logger.Warn("Admin account is not provisioned and no bootstrap credentials are configured")
		return false, nil
	}

	admin := &identity.Admin{ID: identity.AdminID, Username: username}
	if err := admin.SetPassword(password); err != nil {
		return false, err
	}
	if err := s.admins.Save(ctx, admin); err != nil {
		return false, err
	}
	s.logger.Info("Admin account provisioned", zap.String("username", username))
	return true, nil
}

// ValidateSession checks the token signature, expiry and revocation list
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*identity.Session, error) {
	session, err := s.jwtService.Validate(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, shared.NewDomainError("SESSION_EXPIRED", "Session has expired, please log in again")
		default:
			return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid session token")
		}
	}

	revoked, err := s.revoker.IsRevoked(ctx, session.ID)
	if err != nil {
		s.logger.Error("Failed to check session revocation", zap.String("session_id", session.ID), zap.Error(err))
		return nil, shared.ErrUnavailable.WithCause(err)
	}
	if revoked {
		return nil, shared.NewDomainError("SESSION_REVOKED", "Session has been signed out")
	}
	return session, nil
}

// Logout revokes the session until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, session *identity.Session) error {
	remaining := session.Remaining(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, session.ID, remaining); err != nil {
		s.logger.Error("Failed to revoke session", zap.String("session_id", session.ID), zap.Error(err))
		return shared.ErrUnavailable.WithCause(err)
	}
	s.logger.Info("Admin logged out", zap.String("session_id", session.ID))
	return nil
}

// Describe returns the session details shown to the client
func (s *AuthService) Describe(session *identity.Session) SessionInfo {
	return SessionInfo{
		SessionID: session.ID,
		Username:  session.Username,
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
		Remaining: session.Remaining(s.now()) / time.Second,
	}
}
