package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func New(connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// schema is applied at startup. filled_by/updated_by are weak references:
// deleting a user clears them but never touches the receipt rows. The
// token row, by contrast, dies with its user.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS auth_tokens (
	key        TEXT PRIMARY KEY,
	user_id    BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS receipts (
	id             BIGSERIAL PRIMARY KEY,
	account_head   TEXT NOT NULL,
	account_number TEXT NOT NULL,
	receipt_number TEXT NOT NULL,
	receipt_type   TEXT NOT NULL DEFAULT 'gold' CHECK (receipt_type IN ('gold', 'silver')),
	name           TEXT NOT NULL,
	address1       TEXT NOT NULL,
	address2       TEXT,
	taluka         TEXT NOT NULL,
	district       TEXT NOT NULL,
	pin_code       VARCHAR(10) NOT NULL,
	state          TEXT NOT NULL,
	mobile         VARCHAR(15) NOT NULL,
	gotra          TEXT NOT NULL,
	gross_weight   NUMERIC(10, 2) NOT NULL,
	net_weight     NUMERIC(10, 2) NOT NULL,
	goods          TEXT NOT NULL,
	image1         TEXT NOT NULL DEFAULT '',
	image2         TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	filled_by      BIGINT REFERENCES users(id) ON DELETE SET NULL,
	updated_by     BIGINT REFERENCES users(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS receipts_created_at_idx ON receipts (created_at DESC, id DESC);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	return nil
}
