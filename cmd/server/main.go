package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalogapp "github.com/marvelstore/backend/internal/application/catalog"
	identityapp "github.com/marvelstore/backend/internal/application/identity"
	tradeapp "github.com/marvelstore/backend/internal/application/trade"
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/domain/identity"
	"github.com/marvelstore/backend/internal/domain/trade"
	"github.com/marvelstore/backend/internal/infrastructure/auth"
	"github.com/marvelstore/backend/internal/infrastructure/cache"
	"github.com/marvelstore/backend/internal/infrastructure/config"
	"github.com/marvelstore/backend/internal/infrastructure/event"
	"github.com/marvelstore/backend/internal/infrastructure/logger"
	"github.com/marvelstore/backend/internal/infrastructure/persistence"
	"github.com/marvelstore/backend/internal/infrastructure/persistence/mongostore"
	"github.com/marvelstore/backend/internal/infrastructure/storage"
	"github.com/marvelstore/backend/internal/infrastructure/telemetry"
	"github.com/marvelstore/backend/internal/interfaces/http/handler"
	"github.com/marvelstore/backend/internal/interfaces/http/middleware"
	"github.com/marvelstore/backend/internal/interfaces/http/router"
)

// repositories are the persistence ports shared by the services
type repositories struct {
	products catalog.ProductRepository
	users    identity.UserRepository
	orders   trade.OrderRepository
	checks   []handler.HealthCheck
	close    func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting Marvel Store API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx := context.Background()

	telemetryCfg := telemetry.FromAppConfig(&cfg.Telemetry)
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		_ = tracerProvider.Shutdown(context.Background())
	}()
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		_ = meterProvider.Shutdown(context.Background())
	}()

	repos, err := openRepositories(ctx, cfg, meterProvider, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		if err := repos.close(context.Background()); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		repos.checks = append(repos.checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	media, err := storage.NewMediaStorage(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	// a nil *redis.Client must not reach the cache as a non-nil interface
	var cacheClient redis.UniversalClient
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		cacheClient = redisClient
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	productCache := cache.NewProductCache(cfg.Cache, cacheClient, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLoggingHandler(event.NewSerializer(), log))

	productService := catalogapp.NewProductService(repos.products, media, productCache, log)
	productService.SetConfig(catalogapp.ProductServiceConfig{
		MaxImages:    cfg.Storage.MaxFiles,
		MaxImageSize: cfg.Storage.MaxUploadSize,
	})
	productService.SetEventPublisher(eventBus)
	eventBus.Subscribe(catalogapp.NewStockCacheHandler(productService, log))

	authService := identityapp.NewAuthService(repos.users, jwtService, blacklist, log)
	authService.SetEventPublisher(eventBus)
	accountService := identityapp.NewAccountService(repos.users, repos.products, jwtService, log)

	orderService := tradeapp.NewOrderService(repos.orders, repos.products, repos.users, log)
	orderService.SetEventPublisher(eventBus)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validation", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
		SkipPaths:   []string{"/api/health", "/api/health/ready"},
	})...)
	if meterProvider.IsEnabled() {
		httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("http.server"))
		if err != nil {
			log.Fatal("Failed to set up HTTP metrics", zap.Error(err))
		}
		engine.Use(httpMetrics)
	}
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig(cfg.IsProduction())))
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	var routeOpts router.Options
	if local, ok := media.(*storage.LocalMediaStorage); ok {
		routeOpts.UploadsDir = local.Dir()
		routeOpts.UploadsPrefix = storage.LocalRoutePrefix(cfg.Storage.PublicURL)
	}

	router.Mount(engine, router.Handlers{
		Health:   handler.NewHealthHandler(repos.checks...),
		Products: handler.NewProductHandler(productService, cfg.Storage.MaxFiles),
		Users:    handler.NewUserHandler(authService, accountService),
		Orders:   handler.NewOrderHandler(orderService),
	}, router.NewGates(authService), routeOpts)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// openRepositories connects the configured store. MongoDB gets its indexes;
// SQLite gets its schema from the models; PostgreSQL is migrated by cmd/migrate.
func openRepositories(ctx context.Context, cfg *config.Config, meterProvider *telemetry.MeterProvider, log *zap.Logger) (*repositories, error) {
	if cfg.Database.Driver == config.DriverMongoDB {
		store, err := mongostore.Connect(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		log.Info("MongoDB connected", zap.String("database", cfg.Database.MongoDatabase))
		return &repositories{
			products: store.Products(),
			users:    store.Users(),
			orders:   store.Orders(),
			checks:   []handler.HealthCheck{{Name: "database", Check: store.Ping}},
			close:    store.Close,
		}, nil
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	dbTracing.DBName = cfg.Database.DBName
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, meterProvider, telemetry.DBMetricsConfig{
		SlowQueryThreshold: cfg.Telemetry.SlowQueryThreshold,
	}, log)
	if err != nil {
		log.Warn("Failed to enable database metrics", zap.Error(err))
	}

	log.Info("Database connected", zap.String("driver", db.Driver()))
	return &repositories{
		products: persistence.NewGormProductRepository(db.DB),
		users:    persistence.NewGormUserRepository(db.DB),
		orders:   persistence.NewGormOrderRepository(db.DB),
		checks: []handler.HealthCheck{{
			Name:  "database",
			Check: func(context.Context) error { return db.Ping() },
		}},
		close: func(context.Context) error {
			if dbMetrics != nil {
				dbMetrics.Stop()
			}
			return db.Close()
		},
	}, nil
}
