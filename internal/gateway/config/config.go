package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPAddr string

	AuthServiceURL      string
	NutritionServiceURL string
	WorkoutServiceURL   string

	IntrospectTimeout time.Duration

	// Ordered ant-style patterns that skip authentication.
	PublicRoutes []string

	CORSAllowedOrigins []string

	// Edge throttle: requests per window per client IP, before any routing.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

var defaultPublicRoutes = []string{
	"/api/auth/**",
	"/swagger-ui/**",
	"/v3/api-docs/**",
	"/healthz",
	"/metrics",
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		AuthServiceURL:      getEnv("AUTH_SERVICE_URL", "http://auth-service:8081"),
		NutritionServiceURL: getEnv("NUTRITION_SERVICE_URL", "http://nutrition-service:8082"),
		WorkoutServiceURL:   getEnv("WORKOUT_SERVICE_URL", "http://workout-service:8083"),
	}

	cfg.PublicRoutes = getList("PUBLIC_ROUTES", defaultPublicRoutes)
	cfg.CORSAllowedOrigins = getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	it, err := getDuration("INTROSPECT_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.IntrospectTimeout = it

	rlr, err := getInt("RATE_LIMIT_REQUESTS", 100)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitRequests = rlr

	rlw, err := getDuration("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow = rlw

	rt, err := getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPReadTimeout = rt

	wt, err := getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout = wt

	idle, err := getDuration("HTTP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout = idle

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
	}
	return n, nil
}
