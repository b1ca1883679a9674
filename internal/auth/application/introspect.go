package application

import (
	"context"
)

// IntrospectionResult reports whether a token is currently valid and, when it
// is, the identity it asserts. Produced fresh per call; never cached.
type IntrospectionResult struct {
	Active bool   `json:"active"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Introspect checks a token against the signing key and the live user
// record. It backs the gateway's hot authorization path, so it never returns
// an error: every failure mode (bad signature, expiry, unknown user,
// storage trouble) collapses to active=false and the caller makes the 401
// decision.
func (s *Service) Introspect(ctx context.Context, token string) IntrospectionResult {
	inactive := IntrospectionResult{Active: false}

	if token == "" {
		return inactive
	}

	claims, err := s.codec.Verify(token)
	if err != nil {
		return inactive
	}

	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return inactive
	}

	if !s.codec.IsValidFor(token, u) {
		return inactive
	}

	return IntrospectionResult{
		Active: true,
		Email:  u.Email,
		Role:   u.CanonicalRole(),
	}
}
