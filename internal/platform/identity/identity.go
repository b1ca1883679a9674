// Package identity establishes the caller identity on services deployed
// behind the api-gateway. The gateway is the trust boundary: it has already
// introspected the bearer token and asserts the caller via the X-User-Email
// and X-User-Role headers, so services rebuild a principal from those headers
// without re-verifying any token. This only holds when the services are not
// reachable except through the gateway.
package identity

import (
	"context"
	"net/http"
	"strings"
)

const (
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"

	// RolePrefix marks header-derived authorities, e.g. "ADMIN" -> "ROLE_ADMIN".
	RolePrefix = "ROLE_"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	Email       string
	Authorities []string
}

// HasAuthority reports whether the principal carries the given authority.
func (p Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the request principal, if one was established.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// TrustHeaders reads the gateway-injected identity headers and, when both are
// present and no principal has been established yet, attaches a principal to
// the request context. The role header may carry a comma-joined role list.
// Requests without the headers proceed as anonymous; route guards decide.
func TrustHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := r.Header.Get(HeaderUserEmail)
		role := r.Header.Get(HeaderUserRole)

		if email != "" && role != "" {
			if _, ok := FromContext(r.Context()); !ok {
				var authorities []string
				for _, part := range strings.Split(role, ",") {
					part = strings.TrimSpace(part)
					if part == "" {
						continue
					}
					authorities = append(authorities, RolePrefix+part)
				}
				ctx := WithPrincipal(r.Context(), Principal{
					Email:       email,
					Authorities: authorities,
				})
				r = r.WithContext(ctx)
			}
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose principal lacks ROLE_<role> with 403,
// and anonymous requests with 401.
func RequireRole(role string) func(http.Handler) http.Handler {
	authority := RolePrefix + role
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !p.HasAuthority(authority) {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
