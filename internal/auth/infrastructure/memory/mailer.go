package memory

import (
	"context"
	"sync"

	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
)

// Mailer is the dev fallback for the Mailer port: it logs instead of
// publishing and records what it was asked to send.
type Mailer struct {
	mu sync.Mutex

	Verifications []SentMail
	Resets        []SentMail
}

type SentMail struct {
	Email string
	Token string
}

func NewMailer() *Mailer { return &Mailer{} }

func (m *Mailer) SendVerificationEmail(ctx context.Context, email, token string) error {
	m.mu.Lock()
	m.Verifications = append(m.Verifications, SentMail{Email: email, Token: token})
	m.mu.Unlock()

	logger.Ctx(ctx).Info().Str("email", email).Msg("verification_email (noop mailer)")
	return nil
}

func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	m.mu.Lock()
	m.Resets = append(m.Resets, SentMail{Email: email, Token: token})
	m.mu.Unlock()

	logger.Ctx(ctx).Info().Str("email", email).Msg("password_reset_email (noop mailer)")
	return nil
}
