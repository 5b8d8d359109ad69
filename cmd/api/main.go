package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/voice-call-analytics/pkg/validator"

	"github.com/johnquangdev/voice-call-analytics/internal/adapter/handler"
	"github.com/johnquangdev/voice-call-analytics/internal/adapter/repository"
	"github.com/johnquangdev/voice-call-analytics/internal/infrastructure/cache"
	"github.com/johnquangdev/voice-call-analytics/internal/infrastructure/database"
	"github.com/johnquangdev/voice-call-analytics/internal/infrastructure/messaging"
	"github.com/johnquangdev/voice-call-analytics/internal/infrastructure/storage"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/analytics"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/calls"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
	"github.com/johnquangdev/voice-call-analytics/pkg/config"
	"github.com/johnquangdev/voice-call-analytics/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collectors := metrics.New()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(collectors.Middleware())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via scripts/migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping AutoMigrate; use scripts/migrate for schema migrations")
	}

	// Report cache: Redis when enabled, in-process otherwise
	var reportCache cache.ReportCache
	var redisCheck handler.HealthCheck
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		reportCache = cache.NewRedisCache(redisClient, logger)
		redisCheck = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		log.Println("📦 Redis disabled, caching reports in memory")
		memoryCache := cache.NewMemoryStore(time.Minute)
		defer memoryCache.Close()
		reportCache = memoryCache
	}

	lagOpts := []lag.Option{
		lag.WithCache(reportCache),
		lag.WithMetrics(collectors),
	}

	// Object storage for report exports
	if cfg.Storage.Enabled {
		log.Println("🗄️  Connecting to object storage...")
		store, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		lagOpts = append(lagOpts, lag.WithObjectStore(store))
	} else {
		log.Println("⚠️  Object storage disabled, report export returns 503")
	}

	// Report events
	if cfg.AMQP.Enabled {
		log.Println("📨 Connecting to AMQP broker...")
		publisher, err := messaging.NewAMQPPublisher(messaging.AMQPConfig{
			URL:          cfg.AMQP.URL,
			ExchangeName: cfg.AMQP.Exchange,
			RoutingKey:   cfg.AMQP.RoutingKey,
		}, logger)
		if err != nil {
			log.Fatalf("Failed to initialize AMQP publisher: %v", err)
		}
		defer publisher.Close()
		lagOpts = append(lagOpts, lag.WithPublisher(publisher))
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	callRepo := repository.NewCallRepository(db)

	// Initialize services
	log.Println("📈 Initializing analytics services...")
	lagService := lag.NewLagService(callRepo, lag.ServiceConfig{
		Thresholds:       cfg.Thresholds,
		MaxCalls:         cfg.Analytics.MaxCalls,
		EpisodeLimit:     cfg.Analytics.EpisodeLimit,
		DefaultRangeDays: cfg.Analytics.DefaultRangeDays,
		CacheTTL:         cfg.Analytics.CacheTTL,
		Workers:          cfg.Analytics.Workers,
		DailyAvgMode:     lag.DailyAvgMode(cfg.Analytics.DailyAvgMode),
		ExcludedUsers:    cfg.Analytics.ExcludedUsers,
		ExportURLExpiry:  cfg.Storage.ExportURLExpiry,
		ExportTimeout:    cfg.Storage.ExportTimeout,
		ExportRetries:    uint64(max(cfg.Storage.ExportRetries, 0)),
	}, logger, lagOpts...)

	analyticsService := analytics.NewAnalyticsService(callRepo, analytics.Config{
		Thresholds:       cfg.Thresholds,
		DefaultRangeDays: cfg.Analytics.DefaultRangeDays,
		ExcludedUsers:    cfg.Analytics.ExcludedUsers,
	}, logger)

	callService := calls.NewCallService(callRepo, calls.Config{
		Thresholds:    cfg.Thresholds,
		ExcludedUsers: cfg.Analytics.ExcludedUsers,
	}, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg,
		handler.NewAnalyticsHandler(analyticsService, lagService, logger),
		handler.NewCallsHandler(callService, logger),
		collectors,
	)
	router.AddHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if redisCheck != nil {
		router.AddHealthCheck("redis", redisCheck)
	}
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
