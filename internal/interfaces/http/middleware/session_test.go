package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backend/internal/domain/identity"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/logger"
	"github.com/shopadmin/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSessionValidator struct {
	mock.Mock
}

func (m *mockSessionValidator) ValidateSession(ctx context.Context, token string) (*identity.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func sessionRouter(v SessionValidator) *gin.Engine {
	router := gin.New()
	router.Use(SessionAuth(v, nil))
	handler := func(c *gin.Context) {
		session, ok := identity.SessionFromContext(c.Request.Context())
		if !ok || GetSession(c) != session {
			c.String(http.StatusInternalServerError, "session missing")
			return
		}
		c.String(http.StatusOK, logger.GetAdminID(c.Request.Context()))
	}
	router.GET("/private", handler)
	router.GET("/live", handler)
	return router
}

func TestSessionAuth(t *testing.T) {
	session := &identity.Session{
		ID:        "sess-1",
		Subject:   identity.AdminID,
		Username:  "admin",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	t.Run("valid bearer token", func(t *testing.T) {
		v := new(mockSessionValidator)
		v.On("ValidateSession", mock.Anything, "good").Return(session, nil)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(AuthHeaderKey, "Bearer good")
		w := httptest.NewRecorder()
		sessionRouter(v).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, identity.AdminID, w.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		v := new(mockSessionValidator)
		w := httptest.NewRecorder()
		sessionRouter(v).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeUnauthorized)
		assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
		v.AssertNotCalled(t, "ValidateSession", mock.Anything, mock.Anything)
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		v := new(mockSessionValidator)
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(AuthHeaderKey, "Basic YWRtaW46YWRtaW4=")
		w := httptest.NewRecorder()
		sessionRouter(v).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired session", func(t *testing.T) {
		v := new(mockSessionValidator)
		v.On("ValidateSession", mock.Anything, "old").
			Return(nil, shared.NewDomainError("SESSION_EXPIRED", "Session has expired"))

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(AuthHeaderKey, "Bearer old")
		w := httptest.NewRecorder()
		sessionRouter(v).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeSessionExpired)
	})

	t.Run("revocation store down", func(t *testing.T) {
		v := new(mockSessionValidator)
		v.On("ValidateSession", mock.Anything, "tok").Return(nil, shared.ErrUnavailable)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(AuthHeaderKey, "Bearer tok")
		w := httptest.NewRecorder()
		sessionRouter(v).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("websocket upgrade may use the query token", func(t *testing.T) {
		v := new(mockSessionValidator)
		v.On("ValidateSession", mock.Anything, "ws-token").Return(session, nil)

		req := httptest.NewRequest(http.MethodGet, "/live?token=ws-token", nil)
		req.Header.Set("Upgrade", "websocket")
		w := httptest.NewRecorder()
		sessionRouter(v).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("query token ignored on plain requests", func(t *testing.T) {
		v := new(mockSessionValidator)
		w := httptest.NewRecorder()
		sessionRouter(v).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private?token=ws-token", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
