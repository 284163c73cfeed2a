package database

import (
	"context"
	"fmt"
)

// schema holds the idempotent DDL for all tables the service owns.
// Statements run in order inside a single transaction.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email      TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL DEFAULT '',
		password   TEXT NOT NULL,
		is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		exam_id    TEXT NOT NULL,
		subject    TEXT NOT NULL,
		topic      TEXT NOT NULL DEFAULT '',
		year       INT NOT NULL,
		body       TEXT NOT NULL,
		options    JSONB NOT NULL DEFAULT '[]'::jsonb,
		answer     TEXT NOT NULL DEFAULT '',
		marks      INT NOT NULL DEFAULT 1,
		body_norm  TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS questions_exam_subject_year_idx
		ON questions (exam_id, subject, year)`,
	`CREATE TABLE IF NOT EXISTS plans (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		price_cents   INT NOT NULL,
		duration_days INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id    UUID NOT NULL REFERENCES users(id),
		plan_id    TEXT NOT NULL REFERENCES plans(id),
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL,
		cancelled  BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS subscriptions_user_idx ON subscriptions (user_id)`,
}

// Migrate applies the schema. Safe to run on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
