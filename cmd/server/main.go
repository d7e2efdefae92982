package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	accountapp "github.com/shopadmin/backend/internal/application/account"
	catalogapp "github.com/shopadmin/backend/internal/application/catalog"
	"github.com/shopadmin/backend/internal/application/dashboard"
	feedbackapp "github.com/shopadmin/backend/internal/application/feedback"
	identityapp "github.com/shopadmin/backend/internal/application/identity"
	orderapp "github.com/shopadmin/backend/internal/application/order"
	"github.com/shopadmin/backend/internal/domain/identity"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/auth"
	"github.com/shopadmin/backend/internal/infrastructure/cache"
	"github.com/shopadmin/backend/internal/infrastructure/config"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"github.com/shopadmin/backend/internal/infrastructure/event"
	"github.com/shopadmin/backend/internal/infrastructure/logger"
	"github.com/shopadmin/backend/internal/infrastructure/messaging"
	"github.com/shopadmin/backend/internal/infrastructure/migration"
	"github.com/shopadmin/backend/internal/infrastructure/notify"
	"github.com/shopadmin/backend/internal/infrastructure/persistence"
	"github.com/shopadmin/backend/internal/infrastructure/storage"
	"github.com/shopadmin/backend/internal/infrastructure/telemetry"
	"github.com/shopadmin/backend/internal/interfaces/http/handler"
	"github.com/shopadmin/backend/internal/interfaces/http/middleware"
	"github.com/shopadmin/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/shopadmin/backend/docs"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Shop Admin API
//	@version		1.0
//	@description	Back-office API for the shop: orders, catalog, customers and feedback

//	@contact.name	API Support

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration (.env, config.toml, SHOP_* environment)
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	// Tee log records into the OTLP pipeline once it is up
	if cfg.Telemetry.LogsEnabled {
		if teed, err := logger.New(cfg.Log, tel.Logs.ZapCore(logger.ParseLevel(cfg.Log.Level))); err == nil {
			log = teed
		} else {
			log.Warn("Failed to attach OTLP log export", zap.Error(err))
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting shop admin backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.String("doc_store", cfg.DocStore.Backend),
	)

	if err := run(ctx, cfg, tel, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// closer releases one resource at shutdown
type closer struct {
	name  string
	close func() error
}

func run(ctx context.Context, cfg *config.Config, tel *telemetry.Telemetry, log *zap.Logger) error {
	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].close(); err != nil {
				log.Error("Failed to close resource", zap.String("resource", closers[i].name), zap.Error(err))
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	systemHandler := handler.NewSystemHandler(version)

	// Redis backs the session revocation list, event idempotency and the change relay
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		redisClient = client
		closers = append(closers, closer{"redis", client.Close})
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var storeOpts []docstore.Option
	var relay *docstore.RedisRelay
	if cfg.DocStore.RelayEnabled {
		if redisClient == nil {
			return errors.New("docstore.relay_enabled requires redis.enabled")
		}
		relay = docstore.NewRedisRelay(redisClient, cfg.DocStore.RelayChannel, log)
		storeOpts = append(storeOpts, docstore.WithPublisher(relay))
	}

	store, err := openDocStore(ctx, cfg, log, systemHandler, g, gctx, &closers, storeOpts...)
	if err != nil {
		return err
	}
	if relay != nil {
		g.Go(func() error { return relay.Run(gctx, store) })
	}

	images, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	notifier := notify.New(cfg.Notify, log)

	// Event bus with an optional forwarder to NATS or Kafka
	eventBus := event.NewInMemoryEventBus(log)
	broker, err := messaging.NewBroker(ctx, cfg.Messaging, log)
	if err != nil {
		return err
	}
	if broker != nil {
		closers = append(closers, closer{"broker", broker.Close})
		idempotency := cache.NewIdempotencyStore(redisClient, log)
		closers = append(closers, closer{"idempotency", idempotency.Close})
		forwarder := messaging.NewForwarder(broker, event.NewSerializer(), cfg.Messaging.SubjectPrefix, log)
		eventBus.Subscribe(event.NewIdempotentHandler(forwarder, idempotency, shared.IdempotencyConfig{
			TTL:     cfg.Event.IdempotencyTTL,
			Enabled: true,
		}, log), forwarder.EventTypes()...)
		log.Info("Order events forwarded", zap.String("driver", cfg.Messaging.Driver))
	}
	if err := eventBus.Start(ctx); err != nil {
		return err
	}
	closers = append(closers, closer{"event bus", func() error { return eventBus.Stop(context.Background()) }})

	meter := tel.Meter.Meter(cfg.Telemetry.ServiceName)
	orderMetrics, err := telemetry.NewOrderMetrics(meter)
	if err != nil {
		return err
	}

	// Repositories
	adminRepo := persistence.NewAdminRepository(store)
	orderRepo := persistence.NewOrderRepository(store, log)
	userRepo := persistence.NewUserRepository(store, log)
	productRepo := persistence.NewProductRepository(store, log)
	testimonialRepo := persistence.NewTestimonialRepository(store, log)

	// Identity
	jwtService := auth.NewJWTService(cfg.JWT)
	var revoker identity.SessionRevoker
	if redisClient != nil {
		revoker = auth.NewRedisSessionRevoker(redisClient)
	} else {
		revoker = auth.NewInMemorySessionRevoker()
	}
	authService := identityapp.NewAuthService(adminRepo, jwtService, revoker, log)
	if _, err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return fmt.Errorf("failed to provision admin account: %w", err)
	}
	profileService := identityapp.NewProfileService(adminRepo, images, log)

	// Orders
	aggregator := orderapp.NewAggregator(orderRepo, log)
	if err := aggregator.Start(ctx); err != nil {
		return err
	}
	closers = append(closers, closer{"order aggregator", aggregator.Close})
	if reg, err := orderMetrics.ObserveAggregate(aggregator.Counts); err != nil {
		log.Warn("Failed to observe order aggregate", zap.Error(err))
	} else {
		closers = append(closers, closer{"aggregate metrics", reg.Unregister})
	}
	queryService := orderapp.NewQueryService(aggregator, orderRepo, userRepo)
	lifecycleService := orderapp.NewLifecycleService(orderRepo, userRepo, notifier, eventBus, orderMetrics, log)
	archiveService := orderapp.NewArchiveService(orderRepo, userRepo, eventBus, orderMetrics, log)

	// Catalog, customers, feedback
	productService := catalogapp.NewProductService(productRepo, images, log)
	userService := accountapp.NewUserService(userRepo, log)
	testimonialService := feedbackapp.NewTestimonialService(testimonialRepo, log)
	dashboardService := dashboard.NewService(
		aggregator, queryService, userService, productService, testimonialService, profileService, log,
	)

	feed := handler.NewLiveFeed(aggregator, cfg.HTTP.CORSAllowOrigins, orderMetrics, log)
	g.Go(func() error { return feed.Run(gctx) })

	loginLimiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimitRequests, cfg.HTTP.LoginRateLimitWindow)
	g.Go(func() error { return loginLimiter.Run(gctx) })

	engine, err := router.NewEngine(router.Options{
		HTTP:             cfg.HTTP,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   cfg.Telemetry.Enabled,
		ProfilingEnabled: cfg.Telemetry.ProfilingEnabled,
		Meter:            meter,
		Sessions:         authService,
		LoginLimiter:     loginLimiter,
		Swagger:          cfg.App.Env != "production",
		Logger:           log,
	}, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Profile:   handler.NewProfileHandler(profileService, cfg.HTTP.MaxUploadSize),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Orders:    handler.NewOrderHandler(queryService, lifecycleService, archiveService),
		Feed:      feed,
		Products:  handler.NewProductHandler(productService, cfg.HTTP.MaxUploadSize),
		Users:     handler.NewUserHandler(userService),
		Feedback:  handler.NewFeedbackHandler(testimonialService),
		System:    systemHandler,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		// Live feed clients are hijacked connections Shutdown does not wait for
		feed.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openDocStore connects the document store selected by cfg.DocStore.Backend
// and registers its health check, background loops and cleanup.
func openDocStore(
	ctx context.Context,
	cfg *config.Config,
	log *zap.Logger,
	system *handler.SystemHandler,
	g *errgroup.Group,
	gctx context.Context,
	closers *[]closer,
	opts ...docstore.Option,
) (docstore.Store, error) {
	switch cfg.DocStore.Backend {
	case "", "memory":
		store := docstore.NewMemoryStore(log, opts...)
		*closers = append(*closers, closer{"document store", store.Close})
		log.Warn("Using the in-memory document store; data is lost on restart")
		return store, nil

	case "sql":
		gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
			logger.WithSQL(cfg.Telemetry.DBLogFullSQL),
		)
		db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, closer{"database", db.Close})
		if err := telemetry.RegisterGormTracing(db.DB, cfg.Telemetry, cfg.Database.DBName, log); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}

		store := docstore.NewGormStore(db.DB, log, opts...)
		if err := migrateDocStore(ctx, cfg, store, log); err != nil {
			return nil, err
		}
		*closers = append(*closers, closer{"document store", store.Close})
		system.AddCheck("database", db.Ping)
		fields := []zap.Field{zap.String("driver", cfg.Database.Driver)}
		if stats, err := db.Stats(); err == nil {
			fields = append(fields, zap.Int("max_open_conns", stats.MaxOpenConnections), zap.Int("open_conns", stats.OpenConnections))
		}
		log.Info("Database connected", fields...)
		return store, nil

	case "mongo":
		store, err := docstore.ConnectMongoStore(ctx,
			cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, log, opts...)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, closer{"document store", store.Close})
		system.AddCheck("mongo", store.Ping)
		g.Go(func() error {
			// Without a replica set only writes made by this process are seen
			if err := store.StreamChanges(gctx); err != nil {
				log.Warn("MongoDB change stream stopped", zap.Error(err))
			}
			return nil
		})
		log.Info("MongoDB connected", zap.String("database", cfg.Mongo.Database))
		return store, nil
	}
	return nil, fmt.Errorf("unknown docstore.backend %q", cfg.DocStore.Backend)
}

// migrateDocStore creates the documents table. Postgres deployments run the
// versioned migrations unless auto migration is on; sqlite always uses gorm.
func migrateDocStore(ctx context.Context, cfg *config.Config, store *docstore.GormStore, log *zap.Logger) error {
	if cfg.Database.AutoMigrate || cfg.Database.Driver != "postgres" {
		return store.AutoMigrate(ctx)
	}

	// A separate handle, since closing the migrator closes its database
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	m, err := migration.New(db, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()
	return m.Up()
}
