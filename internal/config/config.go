package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MuthuprabhaT/BlendCart/internal/storage/minio"
	pkgconfig "github.com/MuthuprabhaT/BlendCart/pkg/config"
	"github.com/MuthuprabhaT/BlendCart/pkg/database"
	"github.com/MuthuprabhaT/BlendCart/pkg/tracing"
)

// Catalog store backends.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

// Object storage backends.
const (
	StorageMinIO  = "minio"
	StorageMemory = "memory"
)

// ServiceName tags logs, metrics and traces.
const ServiceName = "catalog-service"

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"CATALOG_HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Catalog
	Store           string `env:"CATALOG_STORE" envDefault:"postgres"`
	PaginationLimit int    `env:"PAGINATION_LIMIT" envDefault:"8"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"blendcart"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"blendcart"`
	PostgresDB   string `env:"CATALOG_DB_NAME" envDefault:"blendcart_catalog"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	SlowQueryMS  int    `env:"LOG_SLOW_QUERY_MS" envDefault:"0"`

	// MongoDB
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"blendcart"`

	// Redis top-rated cache. An empty host disables the cache.
	RedisHost        string        `env:"REDIS_HOST" envDefault:""`
	RedisPort        int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword    string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	TopRatedCacheTTL time.Duration `env:"TOP_RATED_CACHE_TTL" envDefault:"5m"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Auth
	JWTSecret string `env:"JWT_SECRET" envDefault:""`

	// Object storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"minio"`
	MinIOEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:""`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY" envDefault:""`
	MinIOBucket    string `env:"MINIO_BUCKET" envDefault:"blendcart"`
	MinIORegion    string `env:"MINIO_REGION" envDefault:"us-east-1"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinIOPublicURL string `env:"MINIO_PUBLIC_URL" envDefault:""`
	MemoryBaseURL  string `env:"STORAGE_MEMORY_BASE_URL" envDefault:"http://localhost:8080/uploads"`

	// Uploads
	UploadFolder    string  `env:"UPLOAD_FOLDER" envDefault:"blend-cart-uploads"`
	UploadFormat    string  `env:"UPLOAD_FORMAT" envDefault:"webp"`
	UploadAllowGIF  bool    `env:"UPLOAD_ALLOW_GIF" envDefault:"false"`
	UploadMaxBytes  int64   `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
	UploadRateLimit float64 `env:"UPLOAD_RATE_LIMIT" envDefault:"2"`
	UploadRateBurst int     `env:"UPLOAD_RATE_BURST" envDefault:"5"`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StorePostgres, StoreMongo, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("CATALOG_STORE must be one of postgres, mongo, memory; got %q", c.Store))
	}

	switch c.StorageBackend {
	case StorageMinIO:
		if c.MinIOEndpoint == "" || c.MinIOBucket == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio backend"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be one of minio, memory; got %q", c.StorageBackend))
	}

	if c.PaginationLimit < 1 {
		errs = append(errs, errors.New("PAGINATION_LIMIT must be positive"))
	}
	if c.UploadMaxBytes < 1 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if c.JWTSecret == "" && c.Environment == "production" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}

	return errors.Join(errs...)
}

// PostgresConfig returns the pool settings for the catalog database.
func (c *Config) PostgresConfig() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	return pg
}

// MongoConfig returns the MongoDB client settings.
func (c *Config) MongoConfig() database.MongoConfig {
	return database.MongoConfig{
		URI:            c.MongoURI,
		Database:       c.MongoDatabase,
		ConnectTimeout: 10 * time.Second,
	}
}

// RedisEnabled reports whether the top-rated cache is configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisHost) != ""
}

// RedisConfig returns the cache connection settings.
func (c *Config) RedisConfig() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// MinIOConfig returns the object storage settings.
func (c *Config) MinIOConfig() minio.Config {
	return minio.Config{
		Endpoint:  c.MinIOEndpoint,
		AccessKey: c.MinIOAccessKey,
		SecretKey: c.MinIOSecretKey,
		Bucket:    c.MinIOBucket,
		Region:    c.MinIORegion,
		UseSSL:    c.MinIOUseSSL,
		PublicURL: c.MinIOPublicURL,
	}
}

// TracingConfig returns the OpenTelemetry settings.
func (c *Config) TracingConfig() tracing.Config {
	tc := tracing.DefaultConfig(ServiceName)
	tc.Environment = c.Environment
	tc.OTLPEndpoint = c.OTelEndpoint
	tc.SampleRate = c.OTelSampleRate
	tc.Enabled = c.OTelEnabled
	return tc
}

// SlowQueryThreshold returns the slow query logging threshold, zero when
// disabled.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}
