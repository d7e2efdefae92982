package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backend/internal/infrastructure/config"
	"github.com/shopadmin/backend/internal/infrastructure/logger"
	"github.com/shopadmin/backend/internal/interfaces/http/handler"
	"github.com/shopadmin/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// multipartOverhead is the room left for form fields and part headers on top
// of the upload size limit
const multipartOverhead = 64 << 10

// HealthPath is served without authentication, tracing or access logs
const HealthPath = "/health"

// Handlers are the HTTP handlers of the admin API
type Handlers struct {
	Auth      *handler.AuthHandler
	Profile   *handler.ProfileHandler
	Dashboard *handler.DashboardHandler
	Orders    *handler.OrderHandler
	Feed      *handler.LiveFeed
	Products  *handler.ProductHandler
	Users     *handler.UserHandler
	Feedback  *handler.FeedbackHandler
	System    *handler.SystemHandler
}

// Options configures the engine middleware
type Options struct {
	HTTP             config.HTTPConfig
	ServiceName      string
	TracingEnabled   bool
	ProfilingEnabled bool
	// Meter records HTTP metrics; nil disables them
	Meter        metric.Meter
	Sessions     middleware.SessionValidator
	LoginLimiter *middleware.RateLimiter
	// Swagger serves the API documentation UI under /swagger
	Swagger bool
	Logger  *zap.Logger
}

// NewEngine builds the gin engine serving the admin API
func NewEngine(opts Options, h Handlers) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()
	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			return nil, err
		}
	}

	skipPaths := []string{HealthPath, "/api/v1" + HealthPath}
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: opts.ServiceName,
			Enabled:     opts.TracingEnabled,
			SkipPaths:   skipPaths,
		}),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log, skipPaths...),
		middleware.HTTPMetrics(opts.Meter),
		middleware.Profiling(middleware.ProfilingConfig{
			Enabled:   opts.ProfilingEnabled,
			SkipPaths: skipPaths,
		}),
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins: opts.HTTP.CORSAllowOrigins,
			AllowMethods: opts.HTTP.CORSAllowMethods,
			AllowHeaders: opts.HTTP.CORSAllowHeaders,
		}),
	)

	engine.GET(HealthPath, h.System.Health)
	if opts.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	session := middleware.SessionAuth(opts.Sessions, log)
	jsonLimit := middleware.BodyLimit(opts.HTTP.MaxBodySize)
	uploadLimit := middleware.BodyLimit(opts.HTTP.MaxUploadSize + multipartOverhead)

	r := NewRouter(engine, WithAPIVersion("v1"))

	system := NewDomainGroup("system", "")
	system.GET(HealthPath, h.System.Health)

	auth := NewDomainGroup("auth", "/auth")
	login := []gin.HandlerFunc{jsonLimit, h.Auth.Login}
	if opts.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{middleware.RateLimit(opts.LoginLimiter)}, login...)
	}
	auth.POST("/login", login...)
	auth.POST("/logout", session, h.Auth.Logout)
	auth.GET("/session", session, h.Auth.Session)

	profile := NewDomainGroup("profile", "/profile").Use(session)
	profile.GET("", h.Profile.Get)
	profile.POST("/avatar", uploadLimit, h.Profile.UploadAvatar)
	profile.PUT("/password", jsonLimit, h.Profile.ChangePassword)

	dashboard := NewDomainGroup("dashboard", "/dashboard").Use(session)
	dashboard.GET("", h.Dashboard.Summary)

	orders := NewDomainGroup("orders", "/orders").Use(session)
	orders.GET("", h.Orders.List)
	orders.GET("/history", h.Orders.History)
	orders.GET("/history/export", h.Orders.ExportHistory)
	orders.GET("/live", h.Feed.Serve)
	orders.GET("/:userId/:orderId", h.Orders.Get)
	orders.PATCH("/:userId/:orderId/status", jsonLimit, h.Orders.ChangeStatus)
	orders.POST("/:userId/:orderId/archive", h.Orders.Archive)

	products := NewDomainGroup("products", "/products").Use(session)
	products.GET("", h.Products.List)
	products.GET("/:id", h.Products.Get)
	products.POST("", uploadLimit, h.Products.Create)
	products.PUT("/:id", uploadLimit, h.Products.Update)
	products.DELETE("/:id", h.Products.Delete)

	users := NewDomainGroup("users", "/users").Use(session)
	users.GET("", h.Users.List)
	users.DELETE("/:id", h.Users.Delete)

	feedback := NewDomainGroup("feedback", "/feedback").Use(session)
	feedback.GET("", h.Feedback.List)
	feedback.PATCH("/:id", jsonLimit, h.Feedback.Update)
	feedback.POST("/:id/toggle", h.Feedback.Toggle)
	feedback.DELETE("/:id", h.Feedback.Delete)

	r.Register(system).
		Register(auth).
		Register(profile).
		Register(dashboard).
		Register(orders).
		Register(products).
		Register(users).
		Register(feedback)
	r.Setup()
	log.Debug("Routes registered", zap.Int("count", len(r.Routes())), zap.String("base_path", r.BasePath()))

	return engine, nil
}
