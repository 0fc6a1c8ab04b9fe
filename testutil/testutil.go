// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/voucher-manager/auth"
	"github.com/danielhkuo/voucher-manager/cliparse"
	"github.com/danielhkuo/voucher-manager/db"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/store"
)

// TestPassword is the password of every owner made by CreateTestOwner
const TestPassword = "correct-horse-battery"

// SetupTestDB creates a fresh sqlite database file with the full schema.
// The connection is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore wraps SetupTestDB in a store
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t), db.DialectSQLite)
}

// GetTestConfig returns a standard test configuration. Transition
// cooldown is off unless a test turns it on.
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	return cliparse.Config{
		Port:               3318,
		DatabaseType:       db.DialectSQLite,
		DatabaseURL:        ":memory:",
		SessionSecret:      "test-session-secret",
		SessionTTL:         time.Hour,
		ImageDir:           t.TempDir(),
		MaxImageBytes:      1 << 20,
		PublicBaseURL:      "http://localhost:3318",
		TransitionCooldown: 0,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// CreateTestOwner creates an owner with TestPassword and a live session.
// It returns the owner and its bearer token.
func CreateTestOwner(t *testing.T, st *store.Store, cfg cliparse.Config, email string) (models.Owner, string) {
	t.Helper()
	ctx := context.Background()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	owner, err := st.CreateOwner(ctx, auth.NormalizeEmail(email), hash)
	if err != nil {
		t.Fatalf("Failed to create test owner: %v", err)
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	err = st.CreateSession(ctx, auth.HashSessionToken(token, cfg.SessionSecret), owner.ID, time.Now().Add(cfg.SessionTTL))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	return owner, token
}

// AuthHeader builds the Authorization header for MakeRequest
func AuthHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// CreateTestVoucher stores an UNUSED CODE voucher
func CreateTestVoucher(t *testing.T, st *store.Store, ownerID, brand string, value int64, code string) models.Voucher {
	t.Helper()

	v, err := st.CreateVoucher(context.Background(), ownerID, models.CreateVoucherRequest{
		Brand: brand,
		Value: value,
		Type:  models.TypeCode,
		Code:  code,
	}, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test voucher: %v", err)
	}
	return v
}

// AdvanceTestVoucher walks a voucher through the given statuses, starting
// from its current one. SENT uses a fixed customer name.
func AdvanceTestVoucher(t *testing.T, st *store.Store, v models.Voucher, path ...models.Status) models.Voucher {
	t.Helper()

	for _, target := range path {
		next, err := st.Transition(context.Background(), store.TransitionParams{
			OwnerID:      v.OwnerID,
			VoucherID:    v.ID,
			Expected:     v.Status,
			Target:       target,
			CustomerName: "Test Customer",
			Now:          time.Now(),
		})
		if err != nil {
			t.Fatalf("Failed to move voucher %s to %s: %v", v.ID, target, err)
		}
		v = next
	}
	return v
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
