// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/voucher-manager/models"
)

// captureLogs routes slog output into a buffer for the rest of the test
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWithLogging(t *testing.T) {
	testCases := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"ok", http.StatusOK, "INFO"},
		{"created", http.StatusCreated, "INFO"},
		{"conflict", http.StatusConflict, "INFO"},
		{"server error", http.StatusInternalServerError, "WARN"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"id":"v1"}`))
			})

			w := httptest.NewRecorder()
			handler(w, httptest.NewRequest("POST", "/vouchers", nil))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, `{"id":"v1"}`, w.Body.String())

			lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
			require.Len(t, lines, 2)
			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, tc.wantLevel, entry["level"])
			assert.Equal(t, float64(tc.status), entry["status"])
			assert.Equal(t, "/vouchers", entry["path"])
		})
	}
}

func TestWithLogging_DefaultStatus(t *testing.T) {
	captureLogs(t)
	rec := httptest.NewRecorder()

	// Handlers that only call Write still report 200
	WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		data     any
		expected string
	}{
		{
			name:     "upload",
			status:   http.StatusCreated,
			data:     models.UploadImageResponse{Path: "o1/1.png", URL: "http://x/images/o1/1.png"},
			expected: `{"path":"o1/1.png","url":"http://x/images/o1/1.png"}`,
		},
		{
			name:     "transition failure",
			status:   http.StatusConflict,
			data:     models.TransitionResult{Code: models.CodeStatusChanged, CurrentStatus: models.StatusSold},
			expected: `{"success":false,"code":"STATUS_CHANGED","current_status":"SOLD"}`,
		},
		{
			name:     "array",
			status:   http.StatusOK,
			data:     []models.Status{models.StatusUnused, models.StatusSent},
			expected: `["UNUSED","SENT"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSONResponse(w, tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tc.expected, strings.TrimSpace(w.Body.String()))
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		status    int
		message   string
		wantError string
	}{
		{http.StatusBadRequest, "brand is required", "Bad Request"},
		{http.StatusNotFound, "Voucher not found", "Not Found"},
		{http.StatusRequestEntityTooLarge, "Import file is too large", "Request Entity Too Large"},
		{http.StatusTooManyRequests, "Too many requests, slow down", "Too Many Requests"},
	}

	for _, tc := range testCases {
		t.Run(tc.wantError, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorResponse(w, tc.status, tc.message)

			assert.Equal(t, tc.status, w.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, models.ErrorResponse{Error: tc.wantError, Message: tc.message}, resp)
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"brand":"Grab","value":50000,"extra":true}`))
		var parsed models.CreateVoucherRequest
		require.NoError(t, ParseJSONBody(req, &parsed))
		assert.Equal(t, "Grab", parsed.Brand)
		assert.Equal(t, int64(50000), parsed.Value)
	})

	t.Run("invalid", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{invalid json}`))
		var parsed models.CreateVoucherRequest
		assert.Error(t, ParseJSONBody(req, &parsed))
	})

	t.Run("empty", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))
		var parsed models.TransitionRequest
		assert.Error(t, ParseJSONBody(req, &parsed))
	})

	t.Run("oversized", func(t *testing.T) {
		body := `{"note":"` + strings.Repeat("x", MaxJSONBodyBytes) + `"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		var parsed models.CreateVoucherRequest
		assert.Error(t, ParseJSONBody(req, &parsed))
	})
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handled"))
	})
	handler := CORS(next)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/vouchers/v1/sold", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("regular request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/vouchers/export", nil)
		req.Header.Set("Origin", "https://shop.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "handled", w.Body.String())
		assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Content-Disposition", w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("no origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/vouchers", nil))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "127.0.0.1:1", "203.0.113.195"},
		{"forwarded beats real ip", map[string]string{"X-Forwarded-For": "192.168.1.100", "X-Real-IP": "203.0.113.50"}, "10.0.0.1:1", "192.168.1.100"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.50"}, "10.0.0.1:1", "203.0.113.50"},
		{"blank forwarded", map[string]string{"X-Forwarded-For": " , 10.0.0.9"}, "10.0.0.5:8080", "10.0.0.5"},
		{"remote with port", nil, "192.168.1.50:54321", "192.168.1.50"},
		{"remote without port", nil, "192.168.1.50", "192.168.1.50"},
		{"ipv6 remote", nil, "[::1]:12345", "::1"},
		{"ipv6 forwarded", map[string]string{"X-Forwarded-For": "2001:db8::1"}, "127.0.0.1:1", "2001:db8::1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.expected, GetClientIP(req))
		})
	}
}

func TestRemoteIPIgnoresForwardingHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.9:40000"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "203.0.113.9", RemoteIP(req))

	req.RemoteAddr = "[2001:db8::7]:443"
	assert.Equal(t, "2001:db8::7", RemoteIP(req))
}
