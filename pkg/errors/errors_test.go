package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrValidation, ErrDuplicateReview, ErrUpstreamStorage,
		ErrUnauthorized, ErrForbidden, ErrInternal,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("db connection lost")}
	assert.Equal(t, "INTERNAL_ERROR: something broke: db connection lost", withCause.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "Product not found"}
	assert.Equal(t, "NOT_FOUND: Product not found", bare.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))

	assert.Nil(t, (&AppError{Code: "TEST", Message: "test"}).Unwrap())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		message  string
		status   int
		sentinel error
	}{
		{"not found", NotFound("Product"), "NOT_FOUND", "Product not found", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("rating must be between 1 and 5"), "INVALID_INPUT", "rating must be between 1 and 5", http.StatusBadRequest, ErrInvalidInput},
		{"validation", ValidationFailed("Only image files are allowed"), "VALIDATION_ERROR", "Only image files are allowed", http.StatusBadRequest, ErrValidation},
		{"duplicate review", DuplicateReview("Product"), "DUPLICATE_REVIEW", "Product already reviewed", http.StatusBadRequest, ErrDuplicateReview},
		{"upstream", UpstreamStorage("Image upload failed", errors.New("dial tcp: refused")), "UPSTREAM_STORAGE_ERROR", "Image upload failed", http.StatusBadGateway, ErrUpstreamStorage},
		{"unauthorized", Unauthorized("missing token"), "UNAUTHORIZED", "missing token", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("admin only"), "FORBIDDEN", "admin only", http.StatusForbidden, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestUpstreamStorage_KeepsCause(t *testing.T) {
	cause := errors.New("bucket missing")
	err := UpstreamStorage("Image upload failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstreamStorage)
	assert.NotContains(t, err.Message, "bucket missing")
}

func TestValidationFailed_IsNotInvalidInput(t *testing.T) {
	err := ValidationFailed("Only image files are allowed")

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, InvalidInput("bad rating"), ErrValidation)
}

func TestInternal(t *testing.T) {
	inner := errors.New("boom")
	err := Internal(inner)

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.ErrorIs(t, err, inner)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", DuplicateReview("Product"), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("add review: %w", NotFound("Product")), http.StatusNotFound},
		{"bare not found", ErrNotFound, http.StatusNotFound},
		{"bare invalid", ErrInvalidInput, http.StatusBadRequest},
		{"bare validation", fmt.Errorf("upload: %w", ErrValidation), http.StatusBadRequest},
		{"bare internal", ErrInternal, http.StatusInternalServerError},
		{"bare duplicate", ErrDuplicateReview, http.StatusBadRequest},
		{"bare upstream", fmt.Errorf("put: %w", ErrUpstreamStorage), http.StatusBadGateway},
		{"bare unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"bare forbidden", ErrForbidden, http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
