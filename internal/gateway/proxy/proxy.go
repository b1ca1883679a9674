package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
	"github.com/hediske/fitness-microservices-app/internal/platform/requestid"
)

// New builds a reverse proxy to targetHost ("http://auth-service:8081").
// Paths pass through unchanged; every service mounts its routes under the
// same /api/<name> prefix the gateway exposes.
func New(targetHost string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(targetHost)
	if err != nil {
		return nil, err
	}

	p := httputil.NewSingleHostReverseProxy(target)
	director := p.Director

	p.Director = func(req *http.Request) {
		director(req)

		// Upstream should see itself as the host being called.
		req.Host = target.Host

		if reqID := requestid.FromContext(req.Context()); reqID != "" {
			req.Header.Set("X-Request-Id", reqID)
		}
	}

	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Ctx(r.Context()).Error().
			Err(err).
			Str("target", targetHost).
			Str("path", r.URL.Path).
			Msg("upstream_proxy_error")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream service unreachable","timestamp":"` +
			time.Now().UTC().Format(time.RFC3339) + `"}`))
	}

	return p, nil
}
