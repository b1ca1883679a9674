package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

var userCols = []string{
	"id", "username", "email", "password_hash", "roles",
	"enabled", "email_verified", "account_non_expired", "account_non_locked", "credentials_non_expired",
	"email_verification_token", "password_reset_token",
	"first_name", "last_name", "gender", "birth_date", "height_cm", "weight_kg", "fitness_level",
	"created_at", "updated_at",
}

func fullUserRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols).AddRow(
		"u1", "alice", "a@b.com", "hash", "USER,ADMIN",
		true, true, true, true, true,
		nil, nil,
		"Alice", "Smith", "FEMALE", "1990-05-01", 170.0, 62.5, "INTERMEDIATE",
		now, now,
	)
}

func newRepoForTest(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewUserRepo(db), mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByEmail_MapsRow(t *testing.T) {
	t.Parallel()

	repo, mock := newRepoForTest(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("a@b.com").
		WillReturnRows(fullUserRow())

	u, err := repo.GetByEmail(context.Background(), " A@B.com ")
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if u.ID != "u1" || u.Email != "a@b.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if len(u.Roles) != 2 || u.Roles[0] != "USER" || u.Roles[1] != "ADMIN" {
		t.Fatalf("roles not split: %+v", u.Roles)
	}
	if u.Profile.FirstName != "Alice" || u.Profile.HeightCM != 170.0 {
		t.Fatalf("profile not mapped: %+v", u.Profile)
	}

	expectationsMet(t, mock)
}

func TestGetByEmail_NoRows_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newRepoForTest(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("missing@x.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByEmail(context.Background(), "missing@x.com")
	if !domain.Is(err, "user_not_found") {
		t.Fatalf("expected user_not_found, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestGetByEmail_QueryError_Infrastructure(t *testing.T) {
	t.Parallel()

	repo, mock := newRepoForTest(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("a@b.com").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.GetByEmail(context.Background(), "a@b.com")
	if !domain.Is(err, "db_unavailable") {
		t.Fatalf("expected db_unavailable, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestCreate_UniqueViolations_MapToConflicts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		dbErr   error
		wantErr string
	}{
		{
			"username sqlstate",
			&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"},
			"username_taken",
		},
		{
			"email sqlstate",
			&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			"email_taken",
		},
		{
			"username message only",
			errors.New(`duplicate key value violates unique constraint "users_username_key"`),
			"username_taken",
		},
		{
			"email message only",
			errors.New(`duplicate key value violates unique constraint "users_email_key"`),
			"email_taken",
		},
		{
			// A non-unique SQLSTATE must not be mistaken for a conflict.
			"other sqlstate",
			&pgconn.PgError{Code: "23503", ConstraintName: "users_something_fkey"},
			"db_unavailable",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := newRepoForTest(t)
			mock.ExpectQuery("INSERT INTO users").
				WillReturnError(tc.dbErr)

			_, err := repo.Create(context.Background(), domain.User{
				ID:           "u1",
				Username:     "alice",
				Email:        "a@b.com",
				PasswordHash: "hash",
			})
			if !domain.Is(err, tc.wantErr) {
				t.Fatalf("expected %s, got %v", tc.wantErr, err)
			}

			expectationsMet(t, mock)
		})
	}
}

func TestConsumeEmailVerificationToken_OneRow_Succeeds(t *testing.T) {
	t.Parallel()

	repo, mock := newRepoForTest(t)
	mock.ExpectExec("UPDATE users").
		WithArgs("u1", "tok").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ConsumeEmailVerificationToken(context.Background(), "u1", "tok"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestConsumeEmailVerificationToken_ZeroRows_TokenInvalid(t *testing.T) {
	t.Parallel()

	repo, mock := newRepoForTest(t)
	mock.ExpectExec("UPDATE users").
		WithArgs("u1", "stale-tok").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Zero rows means the stored token no longer matches; the losing side of a
	// concurrent consume lands here.
	err := repo.ConsumeEmailVerificationToken(context.Background(), "u1", "stale-tok")
	if !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestConsumePasswordResetToken_ZeroRows_TokenInvalid(t *testing.T) {
	t.Parallel()

	repo, mock := newRepoForTest(t)
	mock.ExpectExec("UPDATE users").
		WithArgs("u1", "stale-tok", "newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ConsumePasswordResetToken(context.Background(), "u1", "stale-tok", "newhash")
	if !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestSetEmailVerificationToken_ZeroRows_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newRepoForTest(t)
	mock.ExpectExec("UPDATE users").
		WithArgs("ghost", "tok").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetEmailVerificationToken(context.Background(), "ghost", "tok")
	if !domain.Is(err, "user_not_found") {
		t.Fatalf("expected user_not_found, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestExistsByUsername(t *testing.T) {
	t.Parallel()

	repo, mock := newRepoForTest(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if !exists {
		t.Fatalf("expected exists=true")
	}

	expectationsMet(t, mock)
}
