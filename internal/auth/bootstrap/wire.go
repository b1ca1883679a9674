package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/hediske/fitness-microservices-app/internal/auth/application"
	"github.com/hediske/fitness-microservices-app/internal/auth/config"
	"github.com/hediske/fitness-microservices-app/internal/auth/infrastructure/memory"
	"github.com/hediske/fitness-microservices-app/internal/auth/infrastructure/postgres"
	"github.com/hediske/fitness-microservices-app/internal/auth/infrastructure/rabbitmq"
	"github.com/hediske/fitness-microservices-app/internal/auth/infrastructure/redis"
	"github.com/hediske/fitness-microservices-app/internal/auth/infrastructure/security"
	"github.com/hediske/fitness-microservices-app/internal/auth/transport/http/handlers"
	"github.com/hediske/fitness-microservices-app/internal/auth/transport/http/middleware"
	"github.com/hediske/fitness-microservices-app/internal/auth/transport/http/router"
	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
)

// NewServer wires the production auth service.
func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing.
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(dsn string) (*sql.DB, error)

	NewRedis func(addr, password string, db int) *redis.Client

	NewMailer func(rabbitURL, baseURL string) (application.Mailer, error)
}

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis:   redis.New,
		NewMailer: func(rabbitURL, baseURL string) (application.Mailer, error) {
			return rabbitmq.NewMailer(rabbitURL, baseURL)
		},
	}
}

func newServer(deps Deps) (*http.Server, func(), error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := deps.NewDB(cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	userRepo := postgres.NewUserRepo(db)

	// redis (best-effort): without it, throttling is disabled
	var limiter *redis.FixedWindowLimiter
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("redis unavailable; throttling disabled")
			_ = c.Close()
		} else {
			logger.Log.Info().Msg("redis connected")
			limiter = redis.NewFixedWindowLimiter(c)
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// mailer: rabbitmq in prod, log-only fallback in dev
	var mailer application.Mailer
	if cfg.RabbitURL != "" && deps.NewMailer != nil {
		m, err := deps.NewMailer(cfg.RabbitURL, cfg.AppBaseURL)
		if err != nil {
			if cfg.Env == "dev" {
				logger.Log.Warn().Err(err).Msg("rabbitmq unavailable; emails will only be logged")
				mailer = memory.NewMailer()
			} else {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
		} else {
			mailer = m
			if c, ok := m.(interface{ Close() error }); ok {
				cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			}
		}
	} else {
		if cfg.Env != "dev" {
			logger.Log.Warn().Msg("RABBIT_URL unset; emails will only be logged")
		}
		mailer = memory.NewMailer()
	}

	logger.Log.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt codec")
	hasher := security.NewBcryptHasher(12)
	codec := security.NewCodec(cfg.JWTSecret, cfg.JWTIssuer)

	svc := application.NewService(userRepo, hasher, codec, mailer, application.Config{
		AccessTTL:             cfg.AccessTokenTTL,
		RefreshTTL:            cfg.RefreshTokenTTL,
		VerifyEmailTokenTTL:   cfg.VerifyEmailTokenTTL,
		PasswordResetTokenTTL: cfg.PasswordResetTokenTTL,
	})

	svc = svc.WithAudit(func(action string, fields map[string]string) {
		evt := logger.Log.Info().
			Bool("audit", true).
			Str("action", action)
		for k, v := range fields {
			evt = evt.Str(k, v)
		}
		evt.Msg("audit")
	})

	authH := handlers.NewAuthHandler(svc)
	healthH := handlers.NewHealthHandler(db)

	rl := func(scope string, limit int) func(http.Handler) http.Handler {
		if limiter == nil {
			return nil
		}
		return middleware.RateLimit(limiter, scope, limit, cfg.RateLimitWindow)
	}

	h, err := router.New(router.Deps{
		Health:        healthH,
		Auth:          authH,
		LoginLimit:    rl("login", cfg.LoginRateLimit),
		RegisterLimit: rl("register", cfg.RegisterRateLimit),
		ResetLimit:    rl("reset", cfg.ResetRateLimit),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return srv, func() { runCleanup(cleanupFns) }, nil
}

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
