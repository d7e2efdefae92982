package auth

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopadmin/backend/internal/domain/identity"
	"github.com/shopadmin/backend/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

// TokenTypeSession marks admin session tokens
const TokenTypeSession TokenType = "session"

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims represents custom JWT claims
type Claims struct {
	jwt.RegisteredClaims
	Username  string    `json:"username"`
	TokenType TokenType `json:"token_type"`
}

// Session converts the claims into a domain session
func (c *Claims) Session() *identity.Session {
	s := &identity.Session{
		ID:       c.ID,
		Subject:  c.Subject,
		Username: c.Username,
	}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

// JWTService issues and validates signed session tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a new JWT service. Without a configured secret a random
// one is generated, so sessions end when the process restarts.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}
	return &JWTService{
		secret:     secret,
		expiration: cfg.SessionTTL,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// WithClock overrides the time source used to issue and validate tokens
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// Issue creates a signed session token for subject
func (s *JWTService) Issue(subject, username string) (string, *identity.Session, error) {
	// JWT timestamps have second precision.
	now := s.now().Truncate(time.Second)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username:  username,
		TokenType: TokenTypeSession,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims.Session(), nil
}

// Validate checks the signature, expiry and type of a session token
func (s *JWTService) Validate(tokenString string) (*identity.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != TokenTypeSession {
		return nil, ErrInvalidTokenType
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	return claims.Session(), nil
}

// Expiration returns the session lifetime
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}
