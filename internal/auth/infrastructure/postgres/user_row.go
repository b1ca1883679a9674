package postgres

import (
	"database/sql"
	"strings"
	"time"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

// userRow mirrors the users table. Roles are stored comma-joined; the pending
// token columns are nullable and NULL means "no outstanding token".
type userRow struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        string

	Enabled               bool
	EmailVerified         bool
	AccountNonExpired     bool
	AccountNonLocked      bool
	CredentialsNonExpired bool

	EmailVerificationToken sql.NullString
	PasswordResetToken     sql.NullString

	FirstName    sql.NullString
	LastName     sql.NullString
	Gender       sql.NullString
	BirthDate    sql.NullString
	HeightCM     sql.NullFloat64
	WeightKG     sql.NullFloat64
	FitnessLevel sql.NullString

	CreatedAt time.Time
	UpdatedAt time.Time
}

func toDomainUser(ur userRow) domain.User {
	var roles []string
	for _, r := range strings.Split(ur.Roles, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			roles = append(roles, r)
		}
	}

	return domain.User{
		ID:           ur.ID,
		Username:     ur.Username,
		Email:        ur.Email,
		PasswordHash: ur.PasswordHash,
		Roles:        roles,

		Enabled:               ur.Enabled,
		EmailVerified:         ur.EmailVerified,
		AccountNonExpired:     ur.AccountNonExpired,
		AccountNonLocked:      ur.AccountNonLocked,
		CredentialsNonExpired: ur.CredentialsNonExpired,

		EmailVerificationToken: ur.EmailVerificationToken.String,
		PasswordResetToken:     ur.PasswordResetToken.String,

		Profile: domain.Profile{
			FirstName:    ur.FirstName.String,
			LastName:     ur.LastName.String,
			Gender:       ur.Gender.String,
			BirthDate:    ur.BirthDate.String,
			HeightCM:     ur.HeightCM.Float64,
			WeightKG:     ur.WeightKG.Float64,
			FitnessLevel: ur.FitnessLevel.String,
		},

		CreatedAt: ur.CreatedAt,
		UpdatedAt: ur.UpdatedAt,
	}
}

func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}
