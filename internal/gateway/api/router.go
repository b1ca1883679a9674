package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hediske/fitness-microservices-app/internal/gateway/config"
	"github.com/hediske/fitness-microservices-app/internal/gateway/introspect"
	"github.com/hediske/fitness-microservices-app/internal/gateway/middleware"
	"github.com/hediske/fitness-microservices-app/internal/gateway/proxy"
	"github.com/hediske/fitness-microservices-app/internal/gateway/routes"
	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
	platformmw "github.com/hediske/fitness-microservices-app/internal/platform/middleware"
)

// NewRouter assembles the gateway: edge middleware, the auth filter, then a
// reverse proxy per upstream.
func NewRouter(cfg *config.Config) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(platformmw.RequestID)
	r.Use(platformmw.RequestLogger(logger.Log))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(platformmw.Metrics)
	r.Use(platformmw.SecurityHeaders)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.RateLimitRequests > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	introspector := introspect.New(cfg.AuthServiceURL, cfg.IntrospectTimeout)
	public := routes.NewMatcher(cfg.PublicRoutes...)
	r.Use(middleware.Auth(public, introspector))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	authProxy, err := proxy.New(cfg.AuthServiceURL)
	if err != nil {
		return nil, err
	}
	r.Mount("/api/auth", authProxy)

	nutritionProxy, err := proxy.New(cfg.NutritionServiceURL)
	if err != nil {
		return nil, err
	}
	r.Mount("/api/nutrition", nutritionProxy)

	workoutProxy, err := proxy.New(cfg.WorkoutServiceURL)
	if err != nil {
		return nil, err
	}
	r.Mount("/api/workout", workoutProxy)

	logger.Log.Info().
		Str("auth", cfg.AuthServiceURL).
		Str("nutrition", cfg.NutritionServiceURL).
		Str("workout", cfg.WorkoutServiceURL).
		Msg("routes mounted")

	return r, nil
}
