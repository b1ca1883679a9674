// Package api exposes the nutrition service surface. The service trusts
// identity headers injected by the api-gateway; it never sees raw tokens.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hediske/fitness-microservices-app/internal/platform/identity"
	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
	platformmw "github.com/hediske/fitness-microservices-app/internal/platform/middleware"
)

func NewRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(platformmw.RequestID)
	r.Use(platformmw.RequestLogger(logger.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(platformmw.Metrics)
	r.Use(platformmw.SecurityHeaders)
	r.Use(identity.TrustHeaders)

	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/nutrition", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(identity.RequireAuthenticated)
			r.Get("/me", me)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(identity.RequireRole("ADMIN"))
			r.Get("/status", adminStatus)
		})
	})

	return r
}

func healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// me echoes the gateway-established identity back to the caller.
func me(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"email":       p.Email,
		"authorities": p.Authorities,
	})
}

func adminStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "nutrition-service",
		"admin":   p.Email,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
