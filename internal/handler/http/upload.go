package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	"github.com/MuthuprabhaT/BlendCart/internal/service"
	apperrors "github.com/MuthuprabhaT/BlendCart/pkg/errors"
	"github.com/MuthuprabhaT/BlendCart/pkg/httputil"
)

// multipartOverhead is allowed on top of the image size for form framing.
const multipartOverhead = 1 << 20

// UploadHandler handles image uploads.
type UploadHandler struct {
	pipeline *service.ImagePipeline
	logger   *slog.Logger
}

// NewUploadHandler creates a new upload HTTP handler.
func NewUploadHandler(pipeline *service.ImagePipeline, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// UploadResponse is the body returned for a stored image.
type UploadResponse struct {
	Message string `json:"message"`
	Image   string `json:"image"`
}

// UploadImage handles POST /api/upload (multipart/form-data, field "image").
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.pipeline.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, r, apperrors.ValidationFailed("Image is too large"), h.logger)
			return
		}
		httputil.WriteError(w, r, apperrors.InvalidInput("failed to parse multipart form"), h.logger)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(domain.DefaultUploadField)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("image file is required"), h.logger)
		return
	}
	defer file.Close()

	// One extra byte lets the pipeline see an oversized payload.
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("failed to read image"), h.logger)
		return
	}

	result, err := h.pipeline.AcceptUpload(r.Context(), domain.UploadInput{
		FieldName:        domain.DefaultUploadField,
		FileName:         header.Filename,
		DeclaredMimeType: header.Header.Get("Content-Type"),
		Data:             data,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: UploadResponse{
		Message: "Image uploaded successfully",
		Image:   result.URL,
	}})
}
