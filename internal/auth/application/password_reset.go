package application

import (
	"context"
	"strings"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

// InitiatePasswordReset mints a reset token, stores it as the single
// outstanding reset token (overwriting any prior one) and sends the email.
func (s *Service) InitiatePasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.codec.Issue(u.Email, "", s.passwordResetTTL)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordResetToken(ctx, u.ID, token); err != nil {
		return err
	}

	s.audit("password_reset_initiated", map[string]string{"user_id": u.ID})
	return s.mailer.SendPasswordResetEmail(ctx, u.Email, token)
}

// ResetPassword validates and consumes a reset token, replacing the password
// hash. The consume clears the stored token in the same conditional update,
// so a reset token works at most once.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrTokenInvalid()
	}
	if newPassword == "" {
		return domain.ErrMissingField("newPassword")
	}

	claims, err := s.codec.Verify(token)
	if err != nil {
		return err
	}

	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return domain.ErrTokenInvalid()
	}

	if u.PasswordResetToken == "" || u.PasswordResetToken != token {
		return domain.ErrTokenInvalid()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	if err := s.users.ConsumePasswordResetToken(ctx, u.ID, token, hash); err != nil {
		return err
	}

	s.audit("password_reset", map[string]string{"user_id": u.ID})
	return nil
}
