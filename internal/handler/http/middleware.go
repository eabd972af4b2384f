package http

import (
	"mime"
	"net/http"

	apperrors "github.com/MuthuprabhaT/BlendCart/pkg/errors"
	"github.com/MuthuprabhaT/BlendCart/pkg/httputil"
)

// RequireJSON answers 415 when a request carries a body that is not
// application/json. Bodyless writes such as draft creation pass through.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || r.Method == http.MethodGet || r.Method == http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		if mediaType, _, err := mime.ParseMediaType(ct); err != nil || mediaType != "application/json" {
			httputil.WriteError(w, r, &apperrors.AppError{
				Code:    "UNSUPPORTED_MEDIA_TYPE",
				Message: "Content-Type must be application/json",
				Status:  http.StatusUnsupportedMediaType,
				Err:     apperrors.ErrInvalidInput,
			}, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
