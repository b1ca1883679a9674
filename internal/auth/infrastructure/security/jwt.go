package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hediske/fitness-microservices-app/internal/auth/application"
	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

// Codec issues and verifies HS256-signed tokens. Token purpose is implied by
// TTL and claim shape: access tokens carry a role claim, every other purpose
// carries only the subject.
type Codec struct {
	secret []byte
	issuer string
}

func NewCodec(secret, issuer string) *Codec {
	return &Codec{
		secret: []byte(secret),
		issuer: issuer,
	}
}

type tokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for subject with the given TTL. role may be empty.
// Each call embeds a fresh issued-at.
func (c *Codec) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// Verify parses and validates a token. Expired tokens and structurally or
// cryptographically invalid tokens fail with distinct domain errors.
func (c *Codec) Verify(token string) (application.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return application.TokenClaims{}, domain.ErrTokenExpired()
		}
		return application.TokenClaims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return application.TokenClaims{}, domain.ErrTokenInvalid()
	}

	exp := time.Time{}
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	return application.TokenClaims{
		Subject: claims.Subject,
		Role:    claims.Role,
		Exp:     exp,
	}, nil
}

// IsValidFor reports whether token verifies and was issued for the given
// user. The subject check guards against a token minted for one principal
// being replayed against another user's record.
func (c *Codec) IsValidFor(token string, u domain.User) bool {
	claims, err := c.Verify(token)
	if err != nil {
		return false
	}
	return claims.Subject == u.Email
}
