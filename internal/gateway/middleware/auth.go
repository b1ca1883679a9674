package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hediske/fitness-microservices-app/internal/gateway/introspect"
	"github.com/hediske/fitness-microservices-app/internal/gateway/routes"
	"github.com/hediske/fitness-microservices-app/internal/platform/identity"
	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
)

// Introspector is the auth-service call the filter blocks on.
type Introspector interface {
	Introspect(ctx context.Context, token string) (introspect.Result, error)
}

// Auth is the gateway authentication filter. Public routes pass through
// untouched; everything else needs a bearer token that the auth service
// confirms active. On success the verified identity rides to the upstream in
// X-User-Email / X-User-Role. Client-supplied copies of those headers are
// always dropped first so identity can only originate here.
func Auth(public *routes.Matcher, client Introspector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(identity.HeaderUserEmail)
			r.Header.Del(identity.HeaderUserRole)

			if public != nil && public.Matches(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeUnauthorized(w, "missing or invalid Authorization header")
				return
			}

			res, err := client.Introspect(r.Context(), token)
			if err != nil {
				logger.Ctx(r.Context()).Warn().Err(err).
					Str("path", r.URL.Path).
					Msg("introspection_unavailable")
				writeUnauthorized(w, "token could not be validated")
				return
			}
			if !res.Active {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			r.Header.Set(identity.HeaderUserEmail, res.Email)
			r.Header.Set(identity.HeaderUserRole, res.Role)
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":     msg,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
