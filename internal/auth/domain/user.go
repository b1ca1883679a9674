package domain

import (
	"sort"
	"time"
)

// User is the credential record owned by the auth service.
// A disabled or unverified user cannot authenticate; verification is the only
// path that enables the account. EmailVerificationToken and PasswordResetToken
// hold the single outstanding token for each flow: minting a new token
// overwrites (and thereby revokes) the previous one, and consuming a token
// clears the field so it cannot be replayed.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        []string

	Enabled               bool
	EmailVerified         bool
	AccountNonExpired     bool
	AccountNonLocked      bool
	CredentialsNonExpired bool

	EmailVerificationToken string
	PasswordResetToken     string

	Profile Profile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile carries the registration-time fitness profile.
type Profile struct {
	FirstName    string
	LastName     string
	Gender       string
	BirthDate    string
	HeightCM     float64
	WeightKG     float64
	FitnessLevel string
}

// Locked reports the inverse of AccountNonLocked for readability.
func (u User) Locked() bool { return !u.AccountNonLocked }

// CanonicalRole picks the single role propagated to downstream services.
// The role set is lossy by construction (downstream trust headers carry one
// role); picking the lexicographically smallest keeps the choice stable
// across calls instead of depending on set iteration order.
func (u User) CanonicalRole() string {
	if len(u.Roles) == 0 {
		return RoleUser
	}
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	sort.Strings(roles)
	return roles[0]
}
