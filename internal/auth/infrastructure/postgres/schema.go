package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the users table DDL. Applied at startup in dev; production
// deployments run it out-of-band.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id                       TEXT PRIMARY KEY,
	username                 TEXT NOT NULL,
	email                    TEXT NOT NULL,
	password_hash            TEXT NOT NULL,
	roles                    TEXT NOT NULL DEFAULT 'USER',

	enabled                  BOOLEAN NOT NULL DEFAULT FALSE,
	email_verified           BOOLEAN NOT NULL DEFAULT FALSE,
	account_non_expired      BOOLEAN NOT NULL DEFAULT TRUE,
	account_non_locked       BOOLEAN NOT NULL DEFAULT TRUE,
	credentials_non_expired  BOOLEAN NOT NULL DEFAULT TRUE,

	email_verification_token TEXT,
	password_reset_token     TEXT,

	first_name               TEXT,
	last_name                TEXT,
	gender                   TEXT,
	birth_date               TEXT,
	height_cm                DOUBLE PRECISION DEFAULT 0,
	weight_kg                DOUBLE PRECISION DEFAULT 0,
	fitness_level            TEXT,

	created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at               TIMESTAMPTZ NOT NULL DEFAULT now(),

	CONSTRAINT users_username_key UNIQUE (username),
	CONSTRAINT users_email_key UNIQUE (email)
);
`

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply users schema: %w", err)
	}
	return nil
}
