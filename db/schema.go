// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to types and syntax shared by SQLite and PostgreSQL.
const schema = `
-- Owners (sellers)
CREATE TABLE IF NOT EXISTS owners (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Login sessions; token_hash is an HMAC of the bearer token
CREATE TABLE IF NOT EXISTS sessions (
    token_hash TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_owner_id ON sessions(owner_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

-- Vouchers
CREATE TABLE IF NOT EXISTS vouchers (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
    brand TEXT NOT NULL,
    value BIGINT NOT NULL CHECK (value > 0),
    type TEXT NOT NULL CHECK (type IN ('CODE', 'IMAGE')),
    code TEXT,
    image_url TEXT,
    note TEXT,
    status TEXT NOT NULL DEFAULT 'UNUSED' CHECK (status IN ('UNUSED', 'SENT', 'SOLD', 'USED', 'EXPIRED')),
    customer_name TEXT,
    sent_at TIMESTAMP,
    sold_at TIMESTAMP,
    expired_at TIMESTAMP,
    used_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (owner_id, code)
);

CREATE INDEX IF NOT EXISTS idx_vouchers_owner_status ON vouchers(owner_id, status);
CREATE INDEX IF NOT EXISTS idx_vouchers_owner_created ON vouchers(owner_id, created_at);

-- Status history
CREATE TABLE IF NOT EXISTS voucher_events (
    id TEXT PRIMARY KEY,
    voucher_id TEXT NOT NULL REFERENCES vouchers(id) ON DELETE CASCADE,
    owner_id TEXT NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
    from_status TEXT NOT NULL,
    to_status TEXT NOT NULL,
    customer_name TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_voucher_events_voucher_id ON voucher_events(voucher_id);
`
