package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backend/internal/domain/identity"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/logger"
	"github.com/shopadmin/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionKey     = "session"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
	TokenQueryName = "token"
)

// SessionValidator checks a session token
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*identity.Session, error)
}

// SessionAuth rejects requests without a valid admin session. The token comes
// from the Authorization header; WebSocket upgrades may pass it as the token
// query parameter because browsers cannot set headers on them.
func SessionAuth(validator SessionValidator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		session, err := validator.ValidateSession(c.Request.Context(), token)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				code := dto.NormalizeErrorCode(domainErr.Code)
				if dto.GetHTTPStatus(code) == http.StatusUnauthorized {
					abortUnauthorized(c, code, domainErr.Message)
					return
				}
				c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, GetRequestID(c)))
				return
			}
			logger.Enrich(c.Request.Context(), log).Error("Session validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal, "An unexpected error occurred", GetRequestID(c)))
			return
		}

		c.Set(SessionKey, session)
		ctx := identity.WithSession(c.Request.Context(), session)
		ctx = logger.WithAdminID(ctx, session.Subject)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetSession returns the session stored by SessionAuth
func GetSession(c *gin.Context) *identity.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*identity.Session); ok {
			return s
		}
	}
	return nil
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader(AuthHeaderKey); header != "" {
		if len(header) > len(BearerPrefix) && strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
			return strings.TrimSpace(header[len(BearerPrefix):])
		}
		return ""
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query(TokenQueryName)
	}
	return ""
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="shop-admin"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
