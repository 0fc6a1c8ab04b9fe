// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/voucher-manager/auth"
	"github.com/danielhkuo/voucher-manager/db"
	"github.com/danielhkuo/voucher-manager/models"
)

// CreateOwner inserts a seller account. email must already be normalized.
func (s *Store) CreateOwner(ctx context.Context, email, passwordHash string) (models.Owner, error) {
	owner := models.Owner{
		ID:        auth.GenerateID(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.conn.ExecContext(ctx, s.rebind(`
		INSERT INTO owners (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`), owner.ID, owner.Email, passwordHash, owner.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.Owner{}, ErrDuplicateEmail
		}
		return models.Owner{}, fmt.Errorf("failed to insert owner: %w", err)
	}

	return owner, nil
}

// GetOwnerByEmail returns the owner and its password hash.
func (s *Store) GetOwnerByEmail(ctx context.Context, email string) (models.Owner, string, error) {
	var owner models.Owner
	var hash string
	err := s.conn.QueryRowContext(ctx, s.rebind(`
		SELECT id, email, password_hash, created_at FROM owners WHERE email = ?
	`), email).Scan(&owner.ID, &owner.Email, &hash, &owner.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Owner{}, "", ErrNotFound
	}
	if err != nil {
		return models.Owner{}, "", fmt.Errorf("failed to query owner: %w", err)
	}
	return owner, hash, nil
}

func (s *Store) GetOwner(ctx context.Context, id string) (models.Owner, error) {
	var owner models.Owner
	err := s.conn.QueryRowContext(ctx, s.rebind(`
		SELECT id, email, created_at FROM owners WHERE id = ?
	`), id).Scan(&owner.ID, &owner.Email, &owner.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Owner{}, ErrNotFound
	}
	if err != nil {
		return models.Owner{}, fmt.Errorf("failed to query owner: %w", err)
	}
	return owner, nil
}

func (s *Store) ListOwners(ctx context.Context) ([]models.Owner, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, email, created_at FROM owners ORDER BY created_at, email`)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	owners := []models.Owner{}
	for rows.Next() {
		var o models.Owner
		if err := rows.Scan(&o.ID, &o.Email, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// CreateSession stores the hash of a freshly issued bearer token.
func (s *Store) CreateSession(ctx context.Context, tokenHash, ownerID string, expiresAt time.Time) error {
	_, err := s.conn.ExecContext(ctx, s.rebind(`
		INSERT INTO sessions (token_hash, owner_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`), tokenHash, ownerID, time.Now().UTC(), expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSessionOwner resolves a token hash to its owner. Expired sessions
// are treated as missing.
func (s *Store) GetSessionOwner(ctx context.Context, tokenHash string, now time.Time) (models.Owner, error) {
	var owner models.Owner
	err := s.conn.QueryRowContext(ctx, s.rebind(`
		SELECT o.id, o.email, o.created_at
		FROM sessions s
		JOIN owners o ON o.id = s.owner_id
		WHERE s.token_hash = ? AND s.expires_at > ?
	`), tokenHash, now.UTC()).Scan(&owner.ID, &owner.Email, &owner.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Owner{}, ErrNotFound
	}
	if err != nil {
		return models.Owner{}, fmt.Errorf("failed to query session: %w", err)
	}
	return owner, nil
}

func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := s.conn.ExecContext(ctx, s.rebind(`DELETE FROM sessions WHERE token_hash = ?`), tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now and
// returns how many were removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.conn.ExecContext(ctx, s.rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
