package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	platformmw "github.com/hediske/fitness-microservices-app/internal/platform/middleware"
	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Authenticate(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Introspect(w http.ResponseWriter, r *http.Request)

	VerifyEmail(w http.ResponseWriter, r *http.Request)
	ResendVerification(w http.ResponseWriter, r *http.Request)

	InitiatePasswordReset(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler

	// Per-route throttles; nil means no throttle on that group.
	LoginLimit    func(http.Handler) http.Handler
	RegisterLimit func(http.Handler) http.Handler
	ResetLimit    func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}

	passthrough := func(next http.Handler) http.Handler { return next }
	if deps.LoginLimit == nil {
		deps.LoginLimit = passthrough
	}
	if deps.RegisterLimit == nil {
		deps.RegisterLimit = passthrough
	}
	if deps.ResetLimit == nil {
		deps.ResetLimit = passthrough
	}

	r := chi.NewRouter()
	r.Use(platformmw.RequestID)
	r.Use(platformmw.RequestLogger(logger.Log))
	r.Use(platformmw.Metrics)
	r.Use(platformmw.SecurityHeaders)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(deps.RegisterLimit).Post("/register", deps.Auth.Register)
		r.With(deps.LoginLimit).Post("/authenticate", deps.Auth.Authenticate)
		r.Post("/refresh-token", deps.Auth.RefreshToken)

		// Gateway hot path; never throttled.
		r.Post("/introspect", deps.Auth.Introspect)

		r.Get("/verify-email", deps.Auth.VerifyEmail) // ?token=...
		r.With(deps.ResetLimit).Post("/resend-verification", deps.Auth.ResendVerification)

		r.With(deps.ResetLimit).Post("/password-reset/initiate", deps.Auth.InitiatePasswordReset)
		r.Post("/password-reset/confirm", deps.Auth.ResetPassword)
	})

	return r, nil
}
