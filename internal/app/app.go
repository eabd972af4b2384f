package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/MuthuprabhaT/BlendCart/internal/auth"
	rediscache "github.com/MuthuprabhaT/BlendCart/internal/cache/redis"
	"github.com/MuthuprabhaT/BlendCart/internal/config"
	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	"github.com/MuthuprabhaT/BlendCart/internal/event"
	handler "github.com/MuthuprabhaT/BlendCart/internal/handler/http"
	"github.com/MuthuprabhaT/BlendCart/internal/repository"
	"github.com/MuthuprabhaT/BlendCart/internal/repository/memory"
	"github.com/MuthuprabhaT/BlendCart/internal/repository/mongodb"
	"github.com/MuthuprabhaT/BlendCart/internal/repository/postgres"
	"github.com/MuthuprabhaT/BlendCart/internal/service"
	"github.com/MuthuprabhaT/BlendCart/internal/storage"
	memstorage "github.com/MuthuprabhaT/BlendCart/internal/storage/memory"
	"github.com/MuthuprabhaT/BlendCart/internal/storage/minio"
	"github.com/MuthuprabhaT/BlendCart/migrations"
	"github.com/MuthuprabhaT/BlendCart/pkg/database"
	"github.com/MuthuprabhaT/BlendCart/pkg/health"
	pkgkafka "github.com/MuthuprabhaT/BlendCart/pkg/kafka"
	"github.com/MuthuprabhaT/BlendCart/pkg/tracing"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	mongoClient    *mongo.Client
	redisClient    *goredis.Client
	producer       *pkgkafka.Producer
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// Anything opened before a failure is closed again.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		a.closeResources(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	shutdown, err := tracing.InitTracer(ctx, cfg.TracingConfig())
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	healthHandler := health.NewHandler()

	store, err := a.openStore(ctx, healthHandler)
	if err != nil {
		return err
	}

	cache := a.openCache(ctx, healthHandler)
	events := a.openEvents(healthHandler)

	objects, err := a.openStorage(ctx, healthHandler)
	if err != nil {
		return err
	}

	// Build the dependency graph.
	productService := service.NewProductService(store, cache, events, cfg.PaginationLimit, logger)
	reviewAggregator := service.NewReviewAggregator(store, cache, events, logger)
	imagePipeline := service.NewImagePipeline(objects, service.ImagePipelineConfig{
		Policy: domain.ImagePolicy{AllowGIF: cfg.UploadAllowGIF, MaxBytes: cfg.UploadMaxBytes},
		Folder: cfg.UploadFolder,
		Format: cfg.UploadFormat,
	}, logger)

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty; every authenticated request will be rejected")
	}

	router := handler.NewRouter(
		productService,
		reviewAggregator,
		imagePipeline,
		auth.NewValidator(cfg.JWTSecret),
		healthHandler,
		handler.Options{
			ServiceName: config.ServiceName,
			UploadRPS:   cfg.UploadRateLimit,
			UploadBurst: cfg.UploadRateBurst,
		},
		logger,
	)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return nil
}

// openStore connects the configured catalog backend and registers its
// readiness check.
func (a *App) openStore(ctx context.Context, hh *health.Handler) (repository.CatalogStore, error) {
	cfg, logger := a.cfg, a.logger

	switch cfg.Store {
	case config.StorePostgres:
		pgCfg := cfg.PostgresConfig()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		logger.Info("connected to PostgreSQL",
			slog.String("host", pgCfg.Host),
			slog.Int("port", pgCfg.Port),
			slog.String("database", pgCfg.DBName),
		)

		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")

		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
			logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}

		store := postgres.NewStore(pool)
		hh.RegisterCritical("postgres", store.Ping)
		return store, nil

	case config.StoreMongo:
		client, err := database.NewMongoClient(ctx, cfg.MongoConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		a.mongoClient = client
		logger.Info("connected to MongoDB", slog.String("database", cfg.MongoDatabase))

		store := mongodb.NewStore(client.Database(cfg.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		hh.RegisterCritical("mongo", store.Ping)
		return store, nil

	default:
		logger.Warn("using in-memory catalog store; data is lost on restart")
		store := memory.NewStore()
		hh.RegisterCritical("catalog", store.Ping)
		return store, nil
	}
}

// openCache returns the top-rated cache, or nil when Redis is disabled or
// unreachable at startup.
func (a *App) openCache(ctx context.Context, hh *health.Handler) service.TopRatedCache {
	cfg, logger := a.cfg, a.logger
	if !cfg.RedisEnabled() {
		return nil
	}

	client, err := database.NewRedisClient(ctx, cfg.RedisConfig())
	if err != nil {
		logger.Warn("redis unavailable, top rated cache disabled",
			slog.String("addr", cfg.RedisConfig().Addr()),
			slog.String("error", err.Error()),
		)
		return nil
	}
	a.redisClient = client
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisConfig().Addr()))

	cache := rediscache.NewTopRatedCache(client, cfg.TopRatedCacheTTL)
	hh.RegisterNonCritical("redis", cache.Ping)
	return cache
}

// openEvents returns the Kafka event producer, or nil when publishing is
// disabled.
func (a *App) openEvents(hh *health.Handler) service.EventPublisher {
	cfg, logger := a.cfg, a.logger
	if !cfg.KafkaEnabled {
		logger.Info("kafka disabled, domain events are not published")
		return nil
	}

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	hh.RegisterNonCritical("kafka", a.producer.Ping)
	return event.NewProducer(a.producer, logger)
}

// openStorage builds the object storage backend behind a circuit breaker.
func (a *App) openStorage(ctx context.Context, hh *health.Handler) (storage.Storage, error) {
	cfg, logger := a.cfg, a.logger

	var backend storage.Storage
	switch cfg.StorageBackend {
	case config.StorageMinIO:
		s, err := minio.New(cfg.MinIOConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("create object storage: %w", err)
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket %s: %w", cfg.MinIOBucket, err)
		}
		logger.Info("connected to MinIO",
			slog.String("endpoint", cfg.MinIOEndpoint),
			slog.String("bucket", cfg.MinIOBucket),
		)
		backend = s
	default:
		logger.Warn("using in-memory object storage; uploads are lost on restart")
		backend = memstorage.New(cfg.MemoryBaseURL)
	}

	breaker := storage.NewBreaker(backend, storage.DefaultBreakerConfig("object-storage"), logger)
	hh.RegisterCritical("storage", breaker.Ping)
	return breaker, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources(context.Background())
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources(shutdownCtx)

	a.logger.Info("application shutdown complete")
	return nil
}

// closeResources releases every backing connection that was opened. It is
// safe to call on a partially initialised App.
func (a *App) closeResources(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.logger.Error("mongo disconnect error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
