package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hediske/fitness-microservices-app/internal/platform/requestid"
)

const HeaderXRequestID = "X-Request-Id"

// RequestID accepts an inbound X-Request-Id or mints one, echoes it on the
// response, and stores it in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, reqID)

		ctx := requestid.WithContext(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
