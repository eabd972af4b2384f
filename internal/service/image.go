package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	"github.com/MuthuprabhaT/BlendCart/internal/storage"
	apperrors "github.com/MuthuprabhaT/BlendCart/pkg/errors"
)

// Caller-visible upload error messages.
const (
	MsgOnlyImages   = "Only image files are allowed"
	MsgUploadFailed = "Image upload failed"
)

var imageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_image_uploads_total",
		Help: "Image uploads by outcome (stored, rejected, failed).",
	},
	[]string{"result"},
)

// ImagePipelineConfig configures where and how accepted images are stored.
type ImagePipelineConfig struct {
	Policy domain.ImagePolicy
	Folder string
	Format string
}

// ImagePipeline validates image uploads and forwards them to object storage.
type ImagePipeline struct {
	storage storage.Storage
	policy  domain.ImagePolicy
	folder  string
	format  string
	logger  *slog.Logger
	now     func() time.Time
}

// NewImagePipeline creates an image pipeline writing to store. Empty config
// values fall back to the domain upload defaults.
func NewImagePipeline(store storage.Storage, cfg ImagePipelineConfig, logger *slog.Logger) *ImagePipeline {
	if cfg.Policy.MaxBytes <= 0 {
		cfg.Policy.MaxBytes = domain.DefaultMaxUploadBytes
	}
	if cfg.Folder == "" {
		cfg.Folder = domain.DefaultUploadFolder
	}
	if cfg.Format == "" {
		cfg.Format = domain.DefaultUploadFormat
	}
	return &ImagePipeline{
		storage: store,
		policy:  cfg.Policy,
		folder:  strings.Trim(cfg.Folder, "/"),
		format:  strings.TrimPrefix(cfg.Format, "."),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// MaxBytes is the largest accepted image payload.
func (p *ImagePipeline) MaxBytes() int64 {
	return p.policy.MaxBytes
}

// objectKey builds "<folder>/<field>-<unix millis>-<random><ext>". The random
// part keeps uploads within the same millisecond apart; ext is the extension
// of the stored content, not of the requested target format.
func (p *ImagePipeline) objectKey(field, ext string) string {
	return fmt.Sprintf("%s/%s-%d-%s%s", p.folder, field, p.now().UnixMilli(), uuid.NewString()[:8], ext)
}

// validate checks the declared extension and media type, the size and the
// sniffed content. It returns the sniffed type.
func (p *ImagePipeline) validate(in domain.UploadInput) (*mimetype.MIME, error) {
	if !p.policy.AllowsExtension(in.Extension()) || !p.policy.AllowsMIME(in.DeclaredMimeType) {
		return nil, apperrors.ValidationFailed(MsgOnlyImages)
	}
	if len(in.Data) == 0 {
		return nil, apperrors.ValidationFailed(MsgOnlyImages)
	}
	if int64(len(in.Data)) > p.policy.MaxBytes {
		return nil, apperrors.ValidationFailed(fmt.Sprintf("Image must not exceed %d bytes", p.policy.MaxBytes))
	}

	detected := mimetype.Detect(in.Data)
	if !p.policy.AllowsMIME(detected.String()) {
		return nil, apperrors.ValidationFailed(MsgOnlyImages)
	}
	return detected, nil
}

// AcceptUpload validates in and stores it, returning the URL reported by
// storage. Rejected uploads never reach storage; storage failures are
// returned as apperrors.ErrUpstreamStorage and are not retried.
func (p *ImagePipeline) AcceptUpload(ctx context.Context, in domain.UploadInput) (*domain.UploadResult, error) {
	detected, err := p.validate(in)
	if err != nil {
		imageUploadsTotal.WithLabelValues("rejected").Inc()
		p.logger.InfoContext(ctx, "image upload rejected",
			slog.String("file_name", in.FileName),
			slog.String("declared_type", in.DeclaredMimeType),
			slog.Int("size", len(in.Data)),
		)
		return nil, err
	}

	field := in.FieldName
	if field == "" {
		field = domain.DefaultUploadField
	}

	contentType := detected.String()
	res, err := p.storage.Upload(ctx, &storage.UploadInput{
		Key:         p.objectKey(field, detected.Extension()),
		ContentType: contentType,
		Format:      p.format,
		Size:        int64(len(in.Data)),
		Data:        bytes.NewReader(in.Data),
	})
	if err != nil {
		imageUploadsTotal.WithLabelValues("failed").Inc()
		p.logger.ErrorContext(ctx, "image upload to storage failed",
			slog.String("error", err.Error()),
		)
		return nil, apperrors.UpstreamStorage(MsgUploadFailed, err)
	}

	imageUploadsTotal.WithLabelValues("stored").Inc()
	p.logger.InfoContext(ctx, "image uploaded",
		slog.String("key", res.Key),
		slog.String("content_type", contentType),
	)

	return &domain.UploadResult{URL: res.URL}, nil
}
