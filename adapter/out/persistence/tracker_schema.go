package persistence

import (
	"context"
	"fmt"

	"tracker_server/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// schemaStatements creates the relational schema. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGSERIAL PRIMARY KEY,
		email      VARCHAR(255) NOT NULL,
		password   VARCHAR(255) NOT NULL,
		firstname  VARCHAR(100) NOT NULL DEFAULT '',
		lastname   VARCHAR(100) NOT NULL DEFAULT '',
		phone      VARCHAR(50)  NOT NULL DEFAULT '',
		linkedin   VARCHAR(255) NOT NULL DEFAULT '',
		city       VARCHAR(100) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (LOWER(email))`,

	`CREATE TABLE IF NOT EXISTS profile (
		id             BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		skills         TEXT NOT NULL DEFAULT '',
		certifications TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS work_experience (
		id                  BIGSERIAL PRIMARY KEY,
		profile_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		company_name        VARCHAR(255) NOT NULL DEFAULT '',
		position            VARCHAR(255) NOT NULL DEFAULT '',
		years_of_experience INTEGER NOT NULL DEFAULT 0 CHECK (years_of_experience >= 0),
		job_description     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS work_experience_profile_idx ON work_experience (profile_id)`,

	`CREATE TABLE IF NOT EXISTS education (
		id              BIGSERIAL PRIMARY KEY,
		profile_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		degree          VARCHAR(255) NOT NULL DEFAULT '',
		school          VARCHAR(255) NOT NULL DEFAULT '',
		gpa             DOUBLE PRECISION NOT NULL DEFAULT 0,
		field_of_study  VARCHAR(255) NOT NULL DEFAULT '',
		graduation_date DATE
	)`,
	`CREATE INDEX IF NOT EXISTS education_profile_idx ON education (profile_id)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		jobs_id         BIGSERIAL PRIMARY KEY,
		job_title       VARCHAR(255) NOT NULL DEFAULT '',
		company_name    VARCHAR(255) NOT NULL DEFAULT '',
		job_location    VARCHAR(255) NOT NULL DEFAULT '',
		job_type        VARCHAR(100) NOT NULL DEFAULT '',
		job_link        TEXT NOT NULL DEFAULT '',
		job_description TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS users_jobs (
		job_id       BIGINT NOT NULL REFERENCES jobs(jobs_id) ON DELETE CASCADE,
		user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date_applied DATE,
		status       VARCHAR(50) NOT NULL DEFAULT 'Applied',
		UNIQUE (job_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS users_jobs_user_idx ON users_jobs (user_id)`,
}

// Migrate creates missing tables and indexes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	logger.Info("schema up to date (%d statements)", len(schemaStatements))
	return nil
}
