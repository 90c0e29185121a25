// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Open connects to Postgres and fails fast when the database is unreachable.
func Open(ctx context.Context, dsn string, log logrus.FieldLogger) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	log.Info("connected to database")
	return conn, nil
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Schema mirrors seed/schema.sql.
const Schema = `
CREATE TABLE IF NOT EXISTS email_campaigns (
    id            SERIAL PRIMARY KEY,
    campaign_name TEXT NOT NULL,
    description   TEXT NOT NULL,
    slug          TEXT NOT NULL UNIQUE,
    custom_domain TEXT,
    thumbnail_url TEXT,
    to_email      TEXT[] NOT NULL,
    cc_email      TEXT[] NOT NULL DEFAULT '{}',
    subject       TEXT NOT NULL,
    body          TEXT NOT NULL,
    start_date    DATE NOT NULL,
    end_date      DATE,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS email_requests (
    id             SERIAL PRIMARY KEY,
    campaign_id    INTEGER REFERENCES email_campaigns(id) ON DELETE SET NULL,
    name           TEXT NOT NULL,
    place          TEXT NOT NULL,
    email          TEXT NOT NULL,
    visitor_id     TEXT,
    device_type    TEXT,
    platform       TEXT,
    screen_width   INTEGER,
    screen_height  INTEGER,
    language       TEXT,
    referrer       TEXT,
    browser        TEXT,
    os             TEXT,
    traffic_source TEXT,
    ip_address     TEXT,
    user_agent     TEXT,
    city           TEXT,
    region         TEXT,
    country        TEXT,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS email_requests_created_at_idx ON email_requests (created_at DESC);
CREATE INDEX IF NOT EXISTS email_requests_campaign_id_idx ON email_requests (campaign_id);
`
