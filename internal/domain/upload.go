package domain

import (
	"mime"
	"path/filepath"
	"strings"
)

// Upload defaults.
const (
	DefaultUploadField    = "image"
	DefaultUploadFolder   = "blend-cart-uploads"
	DefaultUploadFormat   = "webp"
	DefaultMaxUploadBytes = 5 << 20
)

// UploadInput is a single image upload as received at the boundary.
type UploadInput struct {
	FieldName        string
	FileName         string
	DeclaredMimeType string
	Data             []byte
}

// Extension returns the lower-cased extension of the declared file name,
// including the leading dot.
func (in UploadInput) Extension() string {
	return strings.ToLower(filepath.Ext(in.FileName))
}

// UploadResult carries the canonical URL reported by object storage.
type UploadResult struct {
	URL string `json:"image"`
}

// ImagePolicy is the allow-list for uploaded images.
type ImagePolicy struct {
	AllowGIF bool
	MaxBytes int64
}

var (
	baseImageExtensions = map[string]struct{}{".jpeg": {}, ".jpg": {}, ".png": {}, ".webp": {}}
	baseImageMIMETypes  = map[string]struct{}{"image/jpeg": {}, "image/png": {}, "image/webp": {}}
)

// AllowsExtension reports whether ext (with leading dot) is an accepted image
// extension. Matching is case-insensitive.
func (p ImagePolicy) AllowsExtension(ext string) bool {
	ext = strings.ToLower(ext)
	if _, ok := baseImageExtensions[ext]; ok {
		return true
	}
	return p.AllowGIF && ext == ".gif"
}

// AllowsMIME reports whether the media type, ignoring parameters, is an
// accepted image type.
func (p ImagePolicy) AllowsMIME(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if _, ok := baseImageMIMETypes[mediaType]; ok {
		return true
	}
	return p.AllowGIF && mediaType == "image/gif"
}
