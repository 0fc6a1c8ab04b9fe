// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		query   string
		want    string
	}{
		{"sqlite untouched", DialectSQLite, "SELECT * FROM vouchers WHERE id = ?", "SELECT * FROM vouchers WHERE id = ?"},
		{"postgres numbered", DialectPostgres, "UPDATE vouchers SET status = ? WHERE id = ? AND owner_id = ?", "UPDATE vouchers SET status = $1 WHERE id = $2 AND owner_id = $3"},
		{"quoted literal kept", DialectPostgres, "SELECT '?' FROM t WHERE a = ?", "SELECT '?' FROM t WHERE a = $1"},
		{"no placeholders", DialectPostgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rebind(tt.dialect, tt.query); got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(DialectSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestCreateSchemaIdempotent(t *testing.T) {
	conn := openTestDB(t)

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("first CreateSchema failed: %v", err)
	}
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("second CreateSchema failed: %v", err)
	}

	for _, table := range []string{"owners", "sessions", "vouchers", "voucher_events"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestUniqueViolationDetected(t *testing.T) {
	conn := openTestDB(t)
	if err := CreateSchema(conn); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	if _, err := conn.Exec("INSERT INTO owners (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)", "o1", "a@example.com", "x", now); err != nil {
		t.Fatal(err)
	}

	insert := "INSERT INTO vouchers (id, owner_id, brand, value, type, code, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	if _, err := conn.Exec(insert, "v1", "o1", "Grab", 50000, "CODE", "DUP", now); err != nil {
		t.Fatal(err)
	}
	_, err := conn.Exec(insert, "v2", "o1", "Grab", 50000, "CODE", "DUP", now)
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}

	// Image vouchers without a code do not collide
	insertImage := "INSERT INTO vouchers (id, owner_id, brand, value, type, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	if _, err := conn.Exec(insertImage, "v3", "o1", "Grab", 50000, "IMAGE", "a.png", now); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(insertImage, "v4", "o1", "Grab", 50000, "IMAGE", "b.png", now); err != nil {
		t.Errorf("NULL codes should not collide: %v", err)
	}

	if IsUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
}

func TestSchemaRejectsBadRows(t *testing.T) {
	conn := openTestDB(t)
	if err := CreateSchema(conn); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	if _, err := conn.Exec("INSERT INTO owners (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)", "o1", "a@example.com", "x", now); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query string
		args  []any
	}{
		{"zero value", "INSERT INTO vouchers (id, owner_id, brand, value, type, code, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)", []any{"v1", "o1", "Grab", 0, "CODE", "A", now}},
		{"bad type", "INSERT INTO vouchers (id, owner_id, brand, value, type, code, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)", []any{"v2", "o1", "Grab", 1, "QR", "B", now}},
		{"bad status", "INSERT INTO vouchers (id, owner_id, brand, value, type, code, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", []any{"v3", "o1", "Grab", 1, "CODE", "C", "LOST", now}},
		{"unknown owner", "INSERT INTO vouchers (id, owner_id, brand, value, type, code, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)", []any{"v4", "nobody", "Grab", 1, "CODE", "D", now}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := conn.Exec(tt.query, tt.args...); err == nil {
				t.Error("expected constraint error")
			}
		})
	}
}
