// Package minio stores objects in a MinIO or other S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MuthuprabhaT/BlendCart/internal/storage"
)

// Config holds the bucket connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicURL is the base of returned object URLs. When empty it is derived
	// from Endpoint and Bucket.
	PublicURL string
}

// Storage implements storage.Storage on a single bucket.
type Storage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *slog.Logger
}

var _ storage.Storage = (*Storage)(nil)

// New creates a client for cfg. It does not contact the server.
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL(cfg),
		logger:  logger,
	}, nil
}

func baseURL(cfg Config) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

// objectURL joins the base URL and key, escaping each path segment of key.
func (s *Storage) objectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("object storage bucket created", slog.String("bucket", s.bucket))
	return nil
}

// FormatMetadataKey is the user metadata entry holding the requested
// delivery format. S3 exposes it as the X-Amz-Meta-Target-Format header.
const FormatMetadataKey = "Target-Format"

// Upload writes the object with PutObject.
func (s *Storage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	opts := minio.PutObjectOptions{ContentType: input.ContentType}
	if input.Format != "" {
		opts.UserMetadata = map[string]string{FormatMetadataKey: input.Format}
	}
	info, err := s.client.PutObject(ctx, s.bucket, input.Key, input.Data, input.Size, opts)
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", input.Key, err)
	}

	s.logger.DebugContext(ctx, "object stored",
		slog.String("bucket", s.bucket),
		slog.String("key", info.Key),
		slog.Int64("size", info.Size),
	)

	return &storage.UploadResult{Key: input.Key, URL: s.objectURL(input.Key)}, nil
}

// Ping reports an error when the bucket is unreachable or missing.
func (s *Storage) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}
