package application

import (
	"context"
	"strings"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

// VerifyEmail consumes a verification token: the token must verify
// cryptographically AND equal the single outstanding token stored on the
// user record, which defends against replaying a superseded token after a
// resend. The consume is a conditional update, so exactly one of any
// concurrent attempts with the same token can succeed. This transition is
// the only path out of pending verification.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrTokenInvalid()
	}

	claims, err := s.codec.Verify(token)
	if err != nil {
		return err
	}

	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return domain.ErrTokenInvalid()
	}

	if u.EmailVerificationToken == "" || u.EmailVerificationToken != token {
		return domain.ErrTokenInvalid()
	}

	if err := s.users.ConsumeEmailVerificationToken(ctx, u.ID, token); err != nil {
		return err
	}

	s.audit("verify_email", map[string]string{"user_id": u.ID})
	return nil
}

// ResendVerification overwrites the pending verification token with a fresh
// one (revoking the old by overwrite) and re-sends the email.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if u.EmailVerified {
		return domain.ErrAlreadyVerified()
	}

	token, err := s.codec.Issue(u.Email, "", s.verifyEmailTTL)
	if err != nil {
		return err
	}
	if err := s.users.SetEmailVerificationToken(ctx, u.ID, token); err != nil {
		return err
	}

	return s.mailer.SendVerificationEmail(ctx, u.Email, token)
}
