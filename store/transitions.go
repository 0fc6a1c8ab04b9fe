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
	"github.com/danielhkuo/voucher-manager/models"
)

// TransitionParams describes one guarded status change.
type TransitionParams struct {
	OwnerID   string
	VoucherID string
	Expected  models.Status // status the caller last saw
	Target    models.Status
	// CustomerName is stored when Target is SENT; must be normalized.
	CustomerName string
	Now          time.Time
}

// timestampColumn is the column stamped when a voucher enters status.
func timestampColumn(status models.Status) string {
	switch status {
	case models.StatusSent:
		return "sent_at"
	case models.StatusSold:
		return "sold_at"
	case models.StatusExpired:
		return "expired_at"
	case models.StatusUsed:
		return "used_at"
	}
	return ""
}

func (s *Store) currentStatus(ctx context.Context, tx *sql.Tx, ownerID, voucherID string) (models.Status, error) {
	var status models.Status
	err := tx.QueryRowContext(ctx, s.rebind(`
		SELECT status FROM vouchers WHERE id = ? AND owner_id = ?
	`), voucherID, ownerID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query voucher status: %w", err)
	}
	return status, nil
}

// Transition moves a voucher from p.Expected to p.Target. The update only
// applies while the stored status still equals p.Expected, so of several
// concurrent status changes with the same expectation exactly one succeeds.
// A SENT re-send leaves the status as it was, so concurrent re-sends each
// apply in turn; every one is recorded as an event and the last one sets
// the customer name.
//
// Errors: ErrNotFound, *StatusChangedError, or models.ErrInvalidTransition.
func (s *Store) Transition(ctx context.Context, p TransitionParams) (models.Voucher, error) {
	var updated models.Voucher

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.currentStatus(ctx, tx, p.OwnerID, p.VoucherID)
		if err != nil {
			return err
		}
		if current != p.Expected {
			return &StatusChangedError{Current: current}
		}
		if err := models.ValidateTransition(current, p.Target); err != nil {
			return err
		}

		now := p.Now.UTC()
		query := `UPDATE vouchers SET status = ?, ` + timestampColumn(p.Target) + ` = ?`
		args := []any{string(p.Target), now}
		if p.Target == models.StatusSent {
			query += `, customer_name = ?`
			args = append(args, p.CustomerName)
		}
		query += ` WHERE id = ? AND owner_id = ? AND status = ?`
		args = append(args, p.VoucherID, p.OwnerID, string(p.Expected))

		res, err := tx.ExecContext(ctx, s.rebind(query), args...)
		if err != nil {
			return fmt.Errorf("failed to update voucher status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			// Lost the race; report what the winner left behind
			current, err := s.currentStatus(ctx, tx, p.OwnerID, p.VoucherID)
			if err != nil {
				return err
			}
			return &StatusChangedError{Current: current}
		}

		var customer any
		if p.Target == models.StatusSent {
			customer = p.CustomerName
		}
		_, err = tx.ExecContext(ctx, s.rebind(`
			INSERT INTO voucher_events (id, voucher_id, owner_id, from_status, to_status, customer_name, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), auth.GenerateID(), p.VoucherID, p.OwnerID, string(current), string(p.Target), customer, now)
		if err != nil {
			return fmt.Errorf("failed to insert voucher event: %w", err)
		}

		updated, err = scanVoucher(tx.QueryRowContext(ctx, s.rebind(`
			SELECT `+voucherColumns+` FROM vouchers WHERE id = ? AND owner_id = ?
		`), p.VoucherID, p.OwnerID))
		if err != nil {
			return fmt.Errorf("failed to reload voucher: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Voucher{}, err
	}

	return updated, nil
}
