package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
	"github.com/hediske/fitness-microservices-app/internal/auth/infrastructure/redis"
	"github.com/hediske/fitness-microservices-app/internal/auth/transport/http/response"
	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
)

// RateLimit throttles a route group per client IP with a fixed window over
// Redis. scope names the bucket so login and register budgets stay separate.
// A Redis error fails open: losing throttling beats taking login down.
func RateLimit(limiter *redis.FixedWindowLimiter, scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("ratelimit:%s:%s", scope, clientIP(r))
			d, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				logger.Ctx(r.Context()).Warn().Err(err).
					Str("scope", scope).
					Msg("rate_limit_unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				retry := int(d.RetryAfter.Seconds())
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				response.WriteError(w, r, domain.ErrRateLimited(scope))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
