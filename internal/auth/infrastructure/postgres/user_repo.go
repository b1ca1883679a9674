package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

const userColumns = `id, username, email, password_hash, roles,
enabled, email_verified, account_non_expired, account_non_locked, credentials_non_expired,
email_verification_token, password_reset_token,
first_name, last_name, gender, birth_date, height_cm, weight_kg, fitness_level,
created_at, updated_at`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUserRow(row *sql.Row) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Username,
		&ur.Email,
		&ur.PasswordHash,
		&ur.Roles,
		&ur.Enabled,
		&ur.EmailVerified,
		&ur.AccountNonExpired,
		&ur.AccountNonLocked,
		&ur.CredentialsNonExpired,
		&ur.EmailVerificationToken,
		&ur.PasswordResetToken,
		&ur.FirstName,
		&ur.LastName,
		&ur.Gender,
		&ur.BirthDate,
		&ur.HeightCM,
		&ur.WeightKG,
		&ur.FitnessLevel,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

// ---------- application.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1;`

	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1;`

	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1);`

	var exists bool
	if err := r.db.QueryRowContext(ctx, q, username).Scan(&exists); err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return exists, nil
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1);`

	var exists bool
	if err := r.db.QueryRowContext(ctx, q, normalizeEmail(email)).Scan(&exists); err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return exists, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Username == "" {
		return domain.User{}, domain.ErrMissingField("username")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if len(u.Roles) == 0 {
		u.Roles = []string{domain.RoleUser}
	}

	q := `
INSERT INTO users (id, username, email, password_hash, roles,
	enabled, email_verified, account_non_expired, account_non_locked, credentials_non_expired,
	first_name, last_name, gender, birth_date, height_cm, weight_kg, fitness_level)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
RETURNING ` + userColumns + `;`

	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q,
		u.ID, u.Username, u.Email, u.PasswordHash, joinRoles(u.Roles),
		u.Enabled, u.EmailVerified, u.AccountNonExpired, u.AccountNonLocked, u.CredentialsNonExpired,
		nullable(u.Profile.FirstName), nullable(u.Profile.LastName), nullable(u.Profile.Gender),
		nullable(u.Profile.BirthDate), u.Profile.HeightCM, u.Profile.WeightKG, nullable(u.Profile.FitnessLevel),
	))
	if err != nil {
		if taken := uniqueViolation(err); taken != nil {
			return domain.User{}, taken
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

// uniqueViolation maps a Postgres unique-constraint failure to the matching
// conflict error, or nil if err is something else. SQLSTATE 23505 with the
// constraint name is authoritative; the message match covers drivers that do
// not surface a pgconn.PgError.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return nil
		}
		if pgErr.ConstraintName == "users_username_key" {
			return domain.ErrUsernameTaken()
		}
		return domain.ErrEmailTaken()
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "users_username_key"):
		return domain.ErrUsernameTaken()
	case strings.Contains(msg, "users_email_key"):
		return domain.ErrEmailTaken()
	}
	return nil
}

func (r *UserRepo) SetEmailVerificationToken(ctx context.Context, userID, token string) error {
	const q = `UPDATE users SET email_verification_token = $2, updated_at = now() WHERE id = $1;`
	return r.execExpectingRow(ctx, q, domain.ErrUserNotFound(), userID, token)
}

// ConsumeEmailVerificationToken is the single-row transition out of pending
// verification. The WHERE clause makes it atomic and single-use: only the
// request holding the currently stored token flips the flags, everyone else
// sees zero rows.
func (r *UserRepo) ConsumeEmailVerificationToken(ctx context.Context, userID, token string) error {
	const q = `
UPDATE users
SET enabled = TRUE, email_verified = TRUE, email_verification_token = NULL, updated_at = now()
WHERE id = $1 AND email_verification_token = $2;`
	return r.execExpectingRow(ctx, q, domain.ErrTokenInvalid(), userID, token)
}

func (r *UserRepo) SetPasswordResetToken(ctx context.Context, userID, token string) error {
	const q = `UPDATE users SET password_reset_token = $2, updated_at = now() WHERE id = $1;`
	return r.execExpectingRow(ctx, q, domain.ErrUserNotFound(), userID, token)
}

func (r *UserRepo) ConsumePasswordResetToken(ctx context.Context, userID, token, newHash string) error {
	const q = `
UPDATE users
SET password_hash = $3, password_reset_token = NULL, updated_at = now()
WHERE id = $1 AND password_reset_token = $2;`
	return r.execExpectingRow(ctx, q, domain.ErrTokenInvalid(), userID, token, newHash)
}

// execExpectingRow runs an UPDATE that must touch exactly one row; zero rows
// maps to noRow.
func (r *UserRepo) execExpectingRow(ctx context.Context, q string, noRow error, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return noRow
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
