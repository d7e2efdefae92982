package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	accountapp "github.com/shopadmin/backend/internal/application/account"
	catalogapp "github.com/shopadmin/backend/internal/application/catalog"
	"github.com/shopadmin/backend/internal/application/dashboard"
	feedbackapp "github.com/shopadmin/backend/internal/application/feedback"
	identityapp "github.com/shopadmin/backend/internal/application/identity"
	orderapp "github.com/shopadmin/backend/internal/application/order"
	"github.com/shopadmin/backend/internal/domain/identity"
	"github.com/shopadmin/backend/internal/infrastructure/auth"
	"github.com/shopadmin/backend/internal/infrastructure/config"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"github.com/shopadmin/backend/internal/infrastructure/persistence"
	"github.com/shopadmin/backend/internal/interfaces/http/dto"
	"github.com/shopadmin/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "s3cret-pass"

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type recordingImageStore struct {
	mu      sync.Mutex
	uploads []string
	err     error
}

func (s *recordingImageStore) Upload(_ context.Context, name, contentType string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, name+"|"+contentType)
	return "https://img.test/" + name, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []orderapp.StatusNotification
}

func (n *recordingNotifier) NotifyStatusChange(_ context.Context, msg orderapp.StatusNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

// testApp wires the real services over an in-memory document store
type testApp struct {
	t        *testing.T
	store    *docstore.MemoryStore
	engine   *gin.Engine
	auth     *identityapp.AuthService
	agg      *orderapp.Aggregator
	images   *recordingImageStore
	notifier *recordingNotifier
	feed     *LiveFeed
}

type seedFunc func(ctx context.Context, store *docstore.MemoryStore)

func newTestApp(t *testing.T, seeds ...seedFunc) *testApp {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	store := docstore.NewMemoryStore(logger)
	t.Cleanup(func() { _ = store.Close() })

	admins := persistence.NewAdminRepository(store)
	admin := &identity.Admin{ID: identity.AdminID, Username: "admin"}
	require.NoError(t, admin.SetPassword(testPassword))
	require.NoError(t, admins.Save(ctx, admin))
	for _, seed := range seeds {
		seed(ctx, store)
	}

	app := &testApp{
		t:        t,
		store:    store,
		images:   &recordingImageStore{},
		notifier: &recordingNotifier{},
	}

	orders := persistence.NewOrderRepository(store, logger)
	users := persistence.NewUserRepository(store, logger)
	products := persistence.NewProductRepository(store, logger)
	testimonials := persistence.NewTestimonialRepository(store, logger)

	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "handler-test-secret", Issuer: "shop-admin", SessionTTL: time.Hour})
	app.auth = identityapp.NewAuthService(admins, jwtService, auth.NewInMemorySessionRevoker(), logger)
	profiles := identityapp.NewProfileService(admins, app.images, logger)

	app.agg = orderapp.NewAggregator(orders, logger)
	require.NoError(t, app.agg.Start(ctx))
	t.Cleanup(func() { _ = app.agg.Close() })

	queries := orderapp.NewQueryService(app.agg, orders, users)
	lifecycle := orderapp.NewLifecycleService(orders, users, app.notifier, nil, nil, logger)
	archiver := orderapp.NewArchiveService(orders, users, nil, nil, logger)
	userService := accountapp.NewUserService(users, logger)
	productService := catalogapp.NewProductService(products, app.images, logger)
	feedbackService := feedbackapp.NewTestimonialService(testimonials, logger)
	dash := dashboard.NewService(app.agg, queries, userService, productService, feedbackService, profiles, logger)
	app.feed = NewLiveFeed(app.agg, []string{"http://admin.test"}, nil, logger)
	t.Cleanup(app.feed.Close)

	authHandler := NewAuthHandler(app.auth)
	profileHandler := NewProfileHandler(profiles, 1<<20)
	orderHandler := NewOrderHandler(queries, lifecycle, archiver)
	productHandler := NewProductHandler(productService, 1<<20)
	userHandler := NewUserHandler(userService)
	feedbackHandler := NewFeedbackHandler(feedbackService)
	dashboardHandler := NewDashboardHandler(dash)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.SessionAuth(app.auth, logger))
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/session", authHandler.Session)
	protected.GET("/profile", profileHandler.Get)
	protected.POST("/profile/avatar", profileHandler.UploadAvatar)
	protected.PUT("/profile/password", profileHandler.ChangePassword)
	protected.GET("/dashboard", dashboardHandler.Summary)
	protected.GET("/orders", orderHandler.List)
	protected.GET("/orders/history", orderHandler.History)
	protected.GET("/orders/history/export", orderHandler.ExportHistory)
	protected.GET("/orders/live", app.feed.Serve)
	protected.GET("/orders/:userId/:orderId", orderHandler.Get)
	protected.PATCH("/orders/:userId/:orderId/status", orderHandler.ChangeStatus)
	protected.POST("/orders/:userId/:orderId/archive", orderHandler.Archive)
	protected.GET("/products", productHandler.List)
	protected.GET("/products/:id", productHandler.Get)
	protected.POST("/products", productHandler.Create)
	protected.PUT("/products/:id", productHandler.Update)
	protected.DELETE("/products/:id", productHandler.Delete)
	protected.GET("/users", userHandler.List)
	protected.DELETE("/users/:id", userHandler.Delete)
	protected.GET("/feedback", feedbackHandler.List)
	protected.PATCH("/feedback/:id", feedbackHandler.Update)
	protected.POST("/feedback/:id/toggle", feedbackHandler.Toggle)
	protected.DELETE("/feedback/:id", feedbackHandler.Delete)
	app.engine = r
	return app
}

// login signs in through the API and returns the bearer token
func (a *testApp) login() string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/login", "", jsonBody(a.t, LoginRequest{Username: "admin", Password: testPassword}))
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.AccessToken
}

func (a *testApp) do(method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	return a.doWithType(method, path, token, "application/json", body)
}

func (a *testApp) doWithType(method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// decodeData unmarshals the data field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeData(t, w, nil)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

func seedUser(id, fullName, email string, lastActive time.Time) seedFunc {
	return func(ctx context.Context, store *docstore.MemoryStore) {
		_ = store.Set(ctx, persistence.UsersCollection, id, map[string]any{
			"fullName":   fullName,
			"email":      email,
			"createdAt":  lastActive.Add(-24 * time.Hour).Format(time.RFC3339),
			"lastActive": lastActive.Format(time.RFC3339),
		})
	}
}

func seedOrder(userID, id, status string, date time.Time) seedFunc {
	return func(ctx context.Context, store *docstore.MemoryStore) {
		_ = store.Set(ctx, persistence.LiveOrdersCollection(userID), id, map[string]any{
			"customerName":    "Checkout " + id,
			"customerPhone":   "555-0100",
			"customerAddress": "1 Main St",
			"email":           "",
			"orderDate":       date.Format(time.RFC3339),
			"total":           "49.90",
			"status":          status,
			"products": []any{
				map[string]any{"name": "Shirt", "size": "M", "quantity": 2, "unitPrice": "24.95", "totalPrice": "49.90"},
			},
		})
	}
}

func seedProduct(id, name, gender string) seedFunc {
	return func(ctx context.Context, store *docstore.MemoryStore) {
		_ = store.Set(ctx, persistence.ProductsCollection, id, map[string]any{
			"name":        name,
			"price":       "19.99",
			"description": name + " description",
			"gender":      gender,
			"imageUrl":    "https://img.test/" + id + ".png",
		})
	}
}

func seedTestimonial(id, name string, rating int, shown bool) seedFunc {
	return func(ctx context.Context, store *docstore.MemoryStore) {
		_ = store.Set(ctx, persistence.TestimonialsCollection, id, map[string]any{
			"name":   name,
			"desc":   "Great shop",
			"rating": rating,
			"shown":  shown,
		})
	}
}
