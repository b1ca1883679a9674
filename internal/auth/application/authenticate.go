package application

import (
	"context"
	"strings"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

// Authenticate verifies credentials and issues an access + refresh token
// pair. Lock and disabled checks run before the password comparison, so a
// locked or unverified account reports its state regardless of the password
// presented. User lookup failures hide behind invalid credentials to avoid
// enumeration.
func (s *Service) Authenticate(ctx context.Context, email, password string) (AuthTokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthTokens{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return AuthTokens{}, domain.ErrInvalidCredentials()
	}

	if u.Locked() {
		return AuthTokens{}, domain.ErrAccountLocked()
	}
	if !u.Enabled {
		return AuthTokens{}, domain.ErrAccountDisabled()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return AuthTokens{}, domain.ErrInvalidCredentials()
	}

	toks, err := s.issueTokens(u)
	if err != nil {
		return AuthTokens{}, err
	}

	s.audit("login", map[string]string{"user_id": u.ID})
	return toks, nil
}

// issueTokens mints the access token (subject + canonical role) and the
// refresh token (subject only, longer TTL) for a user.
func (s *Service) issueTokens(u domain.User) (AuthTokens, error) {
	access, err := s.codec.Issue(u.Email, u.CanonicalRole(), s.accessTTL)
	if err != nil {
		return AuthTokens{}, err
	}
	refresh, err := s.codec.Issue(u.Email, "", s.refreshTTL)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}
