package application

import (
	"context"
	"time"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the auth service needs, not HOW it's stored.

The Consume* methods are conditional single-row updates: they succeed only if
the stored pending token equals the presented token, and clear it in the same
statement. That gives single-use semantics under concurrent attempts.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	SetEmailVerificationToken(ctx context.Context, userID, token string) error
	// ConsumeEmailVerificationToken enables the account, marks the email
	// verified and clears the pending token iff token matches the stored one.
	// Returns ErrTokenInvalid on mismatch (including already-consumed).
	ConsumeEmailVerificationToken(ctx context.Context, userID, token string) error

	SetPasswordResetToken(ctx context.Context, userID, token string) error
	// ConsumePasswordResetToken replaces the password hash and clears the
	// pending reset token iff token matches the stored one.
	ConsumePasswordResetToken(ctx context.Context, userID, token, newHash string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenCodec
----------
Issues and verifies signed, expiring tokens. Used for access, refresh,
email-verification and password-reset tokens; purpose is carried by TTL and
claim shape, not by the codec.
*/
type TokenCodec interface {
	Issue(subject, role string, ttl time.Duration) (string, error)
	Verify(token string) (TokenClaims, error)
	IsValidFor(token string, u domain.User) bool
}

type TokenClaims struct {
	Subject string
	Role    string
	Exp     time.Time
}

/*
Mailer
------
Out-of-band email delivery. Implementations publish events for an email
worker; the auth service never talks SMTP itself.
*/
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}
