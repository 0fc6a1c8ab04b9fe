// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/voucher-manager/auth"
	"github.com/danielhkuo/voucher-manager/csvio"
	"github.com/danielhkuo/voucher-manager/db"
	"github.com/danielhkuo/voucher-manager/models"
)

const voucherColumns = `id, owner_id, brand, value, type, code, image_url, note, status,
	customer_name, sent_at, sold_at, expired_at, used_at, created_at`

func scanVoucher(row rowScanner) (models.Voucher, error) {
	var v models.Voucher
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.Brand, &v.Value, &v.Type, &v.Code, &v.ImageURL, &v.Note, &v.Status,
		&v.CustomerName, &v.SentAt, &v.SoldAt, &v.ExpiredAt, &v.UsedAt, &v.CreatedAt,
	)
	return v, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertVoucher(ctx context.Context, ex execer, ownerID string, req models.CreateVoucherRequest, now time.Time) (models.Voucher, error) {
	v := models.Voucher{
		ID:        auth.GenerateID(),
		OwnerID:   ownerID,
		Brand:     req.Brand,
		Value:     req.Value,
		Type:      req.Type,
		Code:      models.OptionalString(req.Code),
		ImageURL:  models.OptionalString(req.ImageURL),
		Note:      models.OptionalString(req.Note),
		Status:    models.StatusUnused,
		CreatedAt: now.UTC(),
	}

	_, err := ex.ExecContext(ctx, s.rebind(`
		INSERT INTO vouchers (id, owner_id, brand, value, type, code, image_url, note, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), v.ID, v.OwnerID, v.Brand, v.Value, string(v.Type), nullable(v.Code), nullable(v.ImageURL), nullable(v.Note), string(v.Status), v.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.Voucher{}, ErrDuplicateCode
		}
		return models.Voucher{}, fmt.Errorf("failed to insert voucher: %w", err)
	}
	return v, nil
}

// CreateVoucher stores a new UNUSED voucher. req must already be normalized.
func (s *Store) CreateVoucher(ctx context.Context, ownerID string, req models.CreateVoucherRequest, now time.Time) (models.Voucher, error) {
	return s.insertVoucher(ctx, s.conn, ownerID, req, now)
}

func (s *Store) GetVoucher(ctx context.Context, ownerID, id string) (models.Voucher, error) {
	v, err := scanVoucher(s.conn.QueryRowContext(ctx, s.rebind(`
		SELECT `+voucherColumns+` FROM vouchers WHERE id = ? AND owner_id = ?
	`), id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voucher{}, ErrNotFound
	}
	if err != nil {
		return models.Voucher{}, fmt.Errorf("failed to query voucher: %w", err)
	}
	return v, nil
}

// ListFilter narrows ListVouchers. Zero values mean "no filter";
// a zero Limit returns every match.
type ListFilter struct {
	Status models.Status
	Brand  string
	Query  string
	Limit  int
	Offset int
}

// ListVouchers returns the owner's vouchers newest first, and the number
// of matches before Limit and Offset are applied. Brand and free-text
// matching happen in Go so that non-ASCII text compares the same way on
// every database.
func (s *Store) ListVouchers(ctx context.Context, ownerID string, f ListFilter) ([]models.Voucher, int, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE owner_id = ?`
	args := []any{ownerID}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.conn.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query vouchers: %w", err)
	}
	defer rows.Close()

	brand := strings.TrimSpace(f.Brand)
	vouchers := []models.Voucher{}
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan voucher: %w", err)
		}
		if brand != "" && !strings.EqualFold(v.Brand, brand) {
			continue
		}
		vouchers = append(vouchers, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate vouchers: %w", err)
	}

	vouchers = models.FilterVouchers(vouchers, f.Query)
	total := len(vouchers)

	if f.Offset > 0 {
		if f.Offset >= len(vouchers) {
			return []models.Voucher{}, total, nil
		}
		vouchers = vouchers[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(vouchers) {
		vouchers = vouchers[:f.Limit]
	}
	return vouchers, total, nil
}

// CountByStatus returns a count for every status, zero included.
func (s *Store) CountByStatus(ctx context.Context, ownerID string) (map[models.Status]int, error) {
	rows, err := s.conn.QueryContext(ctx, s.rebind(`
		SELECT status, COUNT(*) FROM vouchers WHERE owner_id = ? GROUP BY status
	`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count vouchers: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		counts[st] = 0
	}
	for rows.Next() {
		var st models.Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) existingCodes(ctx context.Context, q queryer, ownerID string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, s.rebind(`
		SELECT code FROM vouchers WHERE owner_id = ? AND code IS NOT NULL
	`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query codes: %w", err)
	}
	defer rows.Close()

	codes := make(map[string]bool)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan code: %w", err)
		}
		codes[code] = true
	}
	return codes, rows.Err()
}

// ExistingCodes returns the set of codes the owner already has.
func (s *Store) ExistingCodes(ctx context.Context, ownerID string) (map[string]bool, error) {
	return s.existingCodes(ctx, s.conn, ownerID)
}

// ImportVouchers validates parsed import rows and inserts the valid ones
// in a single transaction. Either every accepted row is stored or none is.
func (s *Store) ImportVouchers(ctx context.Context, ownerID string, rows []models.ImportRow, now time.Time) (models.ImportResult, error) {
	var result models.ImportResult

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := s.existingCodes(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		plan := csvio.PlanImport(rows, existing)
		for i, req := range plan.Accept {
			// Keep created_at distinct so newest-first order follows the file
			at := now.Add(time.Duration(i) * time.Microsecond)
			if _, err := s.insertVoucher(ctx, tx, ownerID, req, at); err != nil {
				return fmt.Errorf("failed to import code %q: %w", req.Code, err)
			}
		}

		result = plan.Result
		result.Inserted = len(plan.Accept)
		return nil
	})
	if err != nil {
		return models.ImportResult{}, err
	}

	return result, nil
}

// ListEvents returns a voucher's status history, oldest first.
func (s *Store) ListEvents(ctx context.Context, ownerID, voucherID string) ([]models.VoucherEvent, error) {
	if _, err := s.GetVoucher(ctx, ownerID, voucherID); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, s.rebind(`
		SELECT id, voucher_id, owner_id, from_status, to_status, customer_name, created_at
		FROM voucher_events
		WHERE voucher_id = ? AND owner_id = ?
		ORDER BY created_at, id
	`), voucherID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.VoucherEvent{}
	for rows.Next() {
		var e models.VoucherEvent
		if err := rows.Scan(&e.ID, &e.VoucherID, &e.OwnerID, &e.FromStatus, &e.ToStatus, &e.CustomerName, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
