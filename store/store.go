// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/voucher-manager/db"
	"github.com/danielhkuo/voucher-manager/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateCode  = errors.New("voucher code already exists")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrStatusChanged  = errors.New("voucher status changed")
)

// StatusChangedError reports the status a voucher actually had when a
// guarded transition found a different one.
type StatusChangedError struct {
	Current models.Status
}

func (e *StatusChangedError) Error() string {
	return fmt.Sprintf("voucher status changed to %s", e.Current)
}

func (e *StatusChangedError) Unwrap() error {
	return ErrStatusChanged
}

// Store runs every query of the service. All voucher queries are scoped by
// owner ID.
type Store struct {
	conn    *sql.DB
	dialect string
}

func New(conn *sql.DB, dialect string) *Store {
	return &Store{conn: conn, dialect: dialect}
}

// DB exposes the underlying connection for health checks.
func (s *Store) DB() *sql.DB {
	return s.conn
}

func (s *Store) rebind(query string) string {
	return db.Rebind(s.dialect, query)
}

// withTx runs fn inside a transaction, committing when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// nullable maps an optional string to a bind argument.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
