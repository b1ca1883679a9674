package application

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Profile  domain.Profile
}

// RegisterResult is the safe summary returned on success. It never carries
// the password or the verification token.
type RegisterResult struct {
	Message  string
	UserID   string
	Email    string
	Username string
}

// Register creates a pending-verification account and triggers the
// verification email. Uniqueness checks run before any mutation, username
// first; side effects are ordered persist-user, persist-token, send-email.
// A failed email send is logged but does not fail registration: the account
// exists and the token can be re-sent.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Username == "" {
		return RegisterResult{}, domain.ErrMissingField("username")
	}
	if in.Email == "" {
		return RegisterResult{}, domain.ErrMissingField("email")
	}
	if in.Password == "" {
		return RegisterResult{}, domain.ErrMissingField("password")
	}

	taken, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return RegisterResult{}, err
	}
	if taken {
		return RegisterResult{}, domain.ErrUsernameTaken()
	}

	taken, err = s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return RegisterResult{}, err
	}
	if taken {
		return RegisterResult{}, domain.ErrEmailTaken()
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return RegisterResult{}, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        []string{domain.RoleUser},

		Enabled:               false,
		EmailVerified:         false,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,

		Profile: in.Profile,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return RegisterResult{}, err
	}

	token, err := s.codec.Issue(created.Email, "", s.verifyEmailTTL)
	if err != nil {
		return RegisterResult{}, err
	}
	if err := s.users.SetEmailVerificationToken(ctx, created.ID, token); err != nil {
		return RegisterResult{}, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, created.Email, token); err != nil {
		// At-least-once-attempt: the account stays in pending verification
		// and the user can hit resend-verification.
		logger.Ctx(ctx).Error().Err(err).
			Str("user_id", created.ID).
			Msg("verification_email_send_failed")
	}

	s.audit("register", map[string]string{"user_id": created.ID, "email": created.Email})

	return RegisterResult{
		Message:  "User registered successfully. Please check your email for verification.",
		UserID:   created.ID,
		Email:    created.Email,
		Username: created.Username,
	}, nil
}
