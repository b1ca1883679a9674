package application

import (
	"context"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

// RefreshToken issues a new access token against a valid refresh token.
// The same refresh token is returned unchanged: this service does not rotate
// refresh tokens, an accepted simplification rather than a contract.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (AuthTokens, error) {
	if refreshToken == "" {
		return AuthTokens{}, domain.ErrTokenInvalid()
	}

	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return AuthTokens{}, domain.ErrTokenInvalid()
	}

	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return AuthTokens{}, domain.ErrTokenInvalid()
	}

	// Binds the token to the live user record (subject must still match).
	if !s.codec.IsValidFor(refreshToken, u) {
		return AuthTokens{}, domain.ErrTokenInvalid()
	}

	access, err := s.codec.Issue(u.Email, u.CanonicalRole(), s.accessTTL)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  access,
		RefreshToken: refreshToken,
	}, nil
}
