// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database connection and creates the schema.

# Connecting

Open supports SQLite (modernc.org/sqlite, pure Go) and PostgreSQL (lib/pq):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections enable foreign keys, set a busy timeout, and are
limited to a single open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - owners: Seller accounts with bcrypt password hashes
  - sessions: Login sessions keyed by HMAC of the bearer token
  - vouchers: Voucher inventory, UNIQUE (owner_id, code)
  - voucher_events: Status change history

# Placeholders

Queries are written with ? placeholders. Rebind converts them to $1, $2,
... for PostgreSQL:

	q := db.Rebind(dialect, "SELECT id FROM vouchers WHERE owner_id = ?")

# Constraint Errors

IsUniqueViolation recognizes unique constraint failures from either
driver, so callers can map them to domain errors.
*/
package db
