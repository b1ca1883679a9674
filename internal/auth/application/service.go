package application

import (
	"time"
)

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	codec  TokenCodec
	mailer Mailer

	accessTTL        time.Duration
	refreshTTL       time.Duration
	verifyEmailTTL   time.Duration
	passwordResetTTL time.Duration

	audit func(action string, fields map[string]string)
}

type Config struct {
	AccessTTL             time.Duration
	RefreshTTL            time.Duration
	VerifyEmailTokenTTL   time.Duration
	PasswordResetTokenTTL time.Duration
}

func NewService(users UserRepo, hasher PasswordHasher, codec TokenCodec, mailer Mailer, cfg Config) *Service {
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	verifyTTL := cfg.VerifyEmailTokenTTL
	if verifyTTL <= 0 {
		verifyTTL = 24 * time.Hour
	}
	resetTTL := cfg.PasswordResetTokenTTL
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}

	return &Service{
		users:  users,
		hasher: hasher,
		codec:  codec,
		mailer: mailer,

		accessTTL:        accessTTL,
		refreshTTL:       refreshTTL,
		verifyEmailTTL:   verifyTTL,
		passwordResetTTL: resetTTL,

		audit: func(string, map[string]string) {},
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// AuthTokens is the token pair returned by Authenticate and RefreshToken.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
}
