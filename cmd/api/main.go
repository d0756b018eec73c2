// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/takeoneapp/takeone-be/internal/adapters/db"
	redis_a "github.com/takeoneapp/takeone-be/internal/adapters/redis_adapter"
	"github.com/takeoneapp/takeone-be/internal/adapters/storage"
	"github.com/takeoneapp/takeone-be/internal/core/ports"
	"github.com/takeoneapp/takeone-be/internal/core/services"
	"github.com/takeoneapp/takeone-be/internal/handlers"
	"github.com/takeoneapp/takeone-be/internal/handlers/middleware"
	"github.com/takeoneapp/takeone-be/internal/pkg/config"
	"github.com/takeoneapp/takeone-be/internal/pkg/logger"
	"github.com/takeoneapp/takeone-be/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting takeone inventory system",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	slogger.Info("loading configuration")
	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	if err := runMigrations(ctx, cfg, slogger.Logger); err != nil {
		slogger.Error("failed to run migrations", slog.String("error", err.Error()))
		if cfg.IsProduction() {
			os.Exit(1)
		}
	}

	deps, err := initializeDependencies(ctx, cfg, slogger.Logger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database         ports.Database
	redisClient      *redis.Client
	redisCache       ports.CacheRepository
	asynqClient      *asynq.Client
	asynqInspector   *asynq.Inspector
	inventoryService *services.InventoryService
	inventoryHandler *handlers.InventoryHandler
	salesHandler     *handlers.SalesHandler
	uploadHandler    *handlers.UploadHandler
	exportHandler    *handlers.ExportHandler
	healthHandler    *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	logger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		ConnMaxLifetime: cfg.Redis.MaxConnAge,
		PoolTimeout:     cfg.Redis.PoolTimeout,
		ConnMaxIdleTime: cfg.Redis.IdleTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	deps.redisCache = redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)

	logger.Info("connecting to object storage",
		slog.String("bucket", cfg.AWS.S3Bucket),
	)

	s3Store, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
	}
	imageStore := storage.NewImageStore(s3Store, logger)

	logger.Info("initializing Asynq client")

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	asynqClient := asynq.NewClient(asynqRedisOpt)
	deps.asynqClient = asynqClient
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	dispatcher := workers.NewDispatcher(asynqClient, logger)

	// Repositories
	itemRepo := db.NewItemRepository(database, logger)
	saleRepo := db.NewSaleRepository(database, logger)

	// Services
	deps.inventoryService = services.NewInventoryService(
		itemRepo, saleRepo, imageStore, deps.redisCache, dispatcher, logger)

	// Handlers
	deps.inventoryHandler = handlers.NewInventoryHandler(deps.inventoryService, logger)
	deps.salesHandler = handlers.NewSalesHandler(saleRepo, deps.redisCache, logger)
	deps.uploadHandler = handlers.NewUploadHandler(deps.inventoryService, logger)
	deps.exportHandler = handlers.NewExportHandler(deps.inventoryService, logger)
	deps.healthHandler = handlers.NewHealthHandler(
		database,
		redisClient,
		deps.asynqInspector,
		cfg,
		logger,
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()

	registerRoutes(mux, deps, cfg)

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux

	if cfg.App.Environment != "test" {
		handler = middleware.Logger(slogger)(handler)
		handler = middleware.Recovery(slogger.Logger)(handler)
		handler = middleware.RequestID(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	// Health and readiness endpoints
	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.healthHandler.Health)
		mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)
	}

	// Inventory endpoints
	mux.HandleFunc("GET "+apiV1+"/inventory", deps.inventoryHandler.List)
	mux.HandleFunc("POST "+apiV1+"/inventory", deps.inventoryHandler.Create)
	mux.HandleFunc("GET "+apiV1+"/inventory/stats", deps.inventoryHandler.Stats)
	mux.HandleFunc("GET "+apiV1+"/inventory/search", deps.inventoryHandler.Search)
	mux.HandleFunc("GET "+apiV1+"/inventory/{id}", deps.inventoryHandler.Get)
	mux.HandleFunc("PUT "+apiV1+"/inventory/{id}", deps.inventoryHandler.Update)
	mux.HandleFunc("DELETE "+apiV1+"/inventory/{id}", deps.inventoryHandler.Delete)
	mux.HandleFunc("POST "+apiV1+"/inventory/{id}/sell", deps.inventoryHandler.Sell)
	mux.HandleFunc("POST "+apiV1+"/inventory/{id}/restock", deps.inventoryHandler.Restock)
	mux.HandleFunc("PATCH "+apiV1+"/inventory/{id}/archive", deps.inventoryHandler.Archive)
	mux.HandleFunc("PATCH "+apiV1+"/inventory/{id}/unarchive", deps.inventoryHandler.Unarchive)

	// Sale history
	mux.HandleFunc("GET "+apiV1+"/sales", deps.salesHandler.List)

	// Standalone image uploads
	mux.HandleFunc("POST "+apiV1+"/upload/image", deps.uploadHandler.UploadImage)
	mux.HandleFunc("DELETE "+apiV1+"/upload/image/{id...}", deps.uploadHandler.DeleteImage)

	// Export endpoints
	mux.HandleFunc("GET "+apiV1+"/export/excel", deps.exportHandler.ExportExcel)

	// pprof endpoints (development only)
	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", http.HandlerFunc(http.DefaultServeMux.ServeHTTP))
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}
