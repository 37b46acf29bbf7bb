package db

import (
	"context"
	"database/sql"
	"fmt"
)

// tables are created in dependency order; every statement is idempotent.
var tables = []struct {
	name string
	ddl  string
}{
	{"content_records", `
CREATE TABLE IF NOT EXISTS content_records (
    id           UUID PRIMARY KEY,
    content_type TEXT NOT NULL,
    status       TEXT NOT NULL,
    data         JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"donations", `
CREATE TABLE IF NOT EXISTS donations (
    id           UUID PRIMARY KEY,
    reference    TEXT NOT NULL UNIQUE,
    amount       NUMERIC(14,2) NOT NULL CHECK (amount > 0),
    email        TEXT NOT NULL,
    name         TEXT NOT NULL DEFAULT '',
    method       TEXT NOT NULL DEFAULT 'Card',
    status       TEXT NOT NULL DEFAULT 'Pending',
    gateway_data JSONB,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"subscribers", `
CREATE TABLE IF NOT EXISTS subscribers (
    id              UUID PRIMARY KEY,
    email           TEXT NOT NULL UNIQUE,
    status          TEXT NOT NULL DEFAULT 'Active',
    source          TEXT NOT NULL DEFAULT 'Website',
    subscribed_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    unsubscribed_at TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"applications", `
CREATE TABLE IF NOT EXISTS applications (
    id             UUID PRIMARY KEY,
    opportunity_id UUID NOT NULL,
    name           TEXT NOT NULL,
    email          TEXT NOT NULL,
    phone          TEXT NOT NULL DEFAULT '',
    cover_letter   TEXT NOT NULL DEFAULT '',
    cv_url         TEXT NOT NULL DEFAULT '',
    cv_public_id   TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'Pending',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"comments", `
CREATE TABLE IF NOT EXISTS comments (
    id         UUID PRIMARY KEY,
    post_id    UUID NOT NULL,
    user_name  TEXT NOT NULL,
    email      TEXT NOT NULL,
    text       TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"settings", `
CREATE TABLE IF NOT EXISTS settings (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    category   TEXT NOT NULL DEFAULT 'general',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"contacts", `
CREATE TABLE IF NOT EXISTS contacts (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL,
    subject    TEXT NOT NULL,
    message    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"users", `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'admin',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
}

var indexes = []string{
	// 一覧取得 (content_type + created_at DESC)
	`CREATE INDEX IF NOT EXISTS idx_content_records_type_created ON content_records(content_type, created_at DESC)`,
	// 公開一覧のステータス絞り込み
	`CREATE INDEX IF NOT EXISTS idx_content_records_type_status ON content_records(content_type, lower(status))`,
	`CREATE INDEX IF NOT EXISTS idx_donations_status_created ON donations(status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_subscribers_status ON subscribers(status, subscribed_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_opportunity ON applications(opportunity_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id, created_at DESC)`,
}

// MigrateUp creates every table and index if missing.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for _, t := range tables {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
