package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
)

// ErrorBody is the wire shape for every error response. Callers depend on
// the error and timestamp fields; code is a stable machine code.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Timestamp string `json:"timestamp"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteText writes a plain-text body with the given status code.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// WriteError converts a domain error into a consistent JSON error response.
// Non-domain errors are treated as internal (500) without leaking details;
// the cause is logged server-side.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := "an unexpected error occurred"

	var de *domain.Error
	if errors.As(err, &de) {
		status = statusFromKind(de.Kind)
		code = de.Code
		message = de.Message
		if de.Kind == domain.KindInternal || de.Kind == domain.KindInfrastructure {
			message = "an unexpected error occurred"
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("request_failed")
	}

	WriteJSON(w, status, ErrorBody{
		Error:     message,
		Code:      code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
