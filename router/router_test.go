// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/voucher-manager/brands"
	"github.com/danielhkuo/voucher-manager/cliparse"
	"github.com/danielhkuo/voucher-manager/metrics"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/ratelimit"
	"github.com/danielhkuo/voucher-manager/storage"
	"github.com/danielhkuo/voucher-manager/store"
	"github.com/danielhkuo/voucher-manager/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *store.Store, cliparse.Config) {
	t.Helper()

	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig(t)
	images, err := storage.NewImageStore(cfg.ImageDir, cfg.PublicBaseURL, cfg.MaxImageBytes)
	if err != nil {
		t.Fatalf("Failed to create image store: %v", err)
	}

	mux := NewRouter(Deps{
		Store:    st,
		Config:   cfg,
		Catalog:  brands.NewCatalog([]models.Brand{{ID: 1, Title: "Shopee"}}),
		Images:   images,
		Metrics:  metrics.New(),
		Cooldown: ratelimit.NewCooldown(cfg.TransitionCooldown),
		Login:    ratelimit.NewLimiter(100, 100),
	})
	return mux, st, cfg
}

func TestHealthEndpoint(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "voucher-manager API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}

	// Unknown paths no longer fall through to the root handler
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/auth/logout"},
		{"GET", "/auth/me"},
		{"POST", "/vouchers"},
		{"GET", "/vouchers"},
		{"GET", "/vouchers/counts"},
		{"GET", "/vouchers/some-id"},
		{"GET", "/vouchers/some-id/events"},
		{"POST", "/vouchers/some-id/sent"},
		{"POST", "/vouchers/some-id/sold"},
		{"POST", "/vouchers/some-id/expired"},
		{"POST", "/vouchers/some-id/used"},
		{"POST", "/vouchers/import"},
		{"GET", "/vouchers/export"},
		{"GET", "/stats"},
		{"GET", "/stats/brands"},
		{"GET", "/stats/brands/Shopee"},
		{"POST", "/images"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
			if w.Header().Get("WWW-Authenticate") == "" {
				t.Error("Expected WWW-Authenticate header")
			}
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	testCases := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/vouchers/import/template", http.StatusOK},
		{"GET", "/brands?q=sho", http.StatusOK},
		{"GET", "/brands/lookup?name=shopee", http.StatusOK},
		{"GET", "/images/owner-1/missing.png", http.StatusNotFound},
		{"POST", "/auth/login", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d. Body: %s", tc.expectedStatus, tc.method, tc.path, w.Code, w.Body.String())
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _, _ := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},               // Only GET is defined
		{"DELETE", "/vouchers/some-id"},   // Only GET is defined
		{"GET", "/vouchers/some-id/sold"}, // Only POST is defined
		{"PUT", "/vouchers/import"},       // Only POST is defined
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestVoucherFlowThroughRouter(t *testing.T) {
	mux, st, cfg := newTestRouter(t)
	_, token := testutil.CreateTestOwner(t, st, cfg, "seller@example.com")
	auth := testutil.AuthHeader(token)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/vouchers", models.CreateVoucherRequest{
		Brand: "Shopee", Value: 50000, Type: models.TypeCode, Code: "SHOP1",
	}, auth))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var v models.Voucher
	testutil.AssertJSON(t, w, &v)

	steps := []struct {
		path string
		body models.TransitionRequest
		want models.Status
	}{
		{"/sent", models.TransitionRequest{ExpectedStatus: models.StatusUnused, CustomerName: "Lê Văn C"}, models.StatusSent},
		{"/sold", models.TransitionRequest{ExpectedStatus: models.StatusSent}, models.StatusSold},
		{"/used", models.TransitionRequest{ExpectedStatus: models.StatusSold}, models.StatusUsed},
	}
	for _, step := range steps {
		w = httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("POST", "/vouchers/"+v.ID+step.path, step.body, auth))
		testutil.AssertStatus(t, w, http.StatusOK)

		var res models.TransitionResult
		testutil.AssertJSON(t, w, &res)
		if res.CurrentStatus != step.want {
			t.Fatalf("after %s expected %s, got %s", step.path, step.want, res.CurrentStatus)
		}
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/vouchers/"+v.ID+"/events", nil, auth))
	testutil.AssertStatus(t, w, http.StatusOK)
	var events []models.VoucherEvent
	testutil.AssertJSON(t, w, &events)
	if len(events) != 3 {
		t.Errorf("Expected 3 events, got %d", len(events))
	}

	// Transitions show up in /metrics
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(w.Body.String(), `vouchers_transitions_total{result="OK",target="USED"} 1`) {
		t.Error("Expected transition counter in metrics output")
	}
}

func loginAttempts(t *testing.T, trustProxy bool, n int) (passed, limited int) {
	t.Helper()

	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig(t)
	cfg.TrustProxy = trustProxy
	images, err := storage.NewImageStore(cfg.ImageDir, cfg.PublicBaseURL, cfg.MaxImageBytes)
	if err != nil {
		t.Fatalf("Failed to create image store: %v", err)
	}
	mux := NewRouter(Deps{
		Store:    st,
		Config:   cfg,
		Catalog:  brands.NewCatalog(nil),
		Images:   images,
		Metrics:  metrics.New(),
		Cooldown: ratelimit.NewCooldown(0),
		Login:    ratelimit.NewLimiter(0.001, 5),
	})

	for i := 0; i < n; i++ {
		body := strings.NewReader(`{"email":"nobody@example.com","password":"wrong-password"}`)
		req := httptest.NewRequest("POST", "/auth/login", body)
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		switch w.Code {
		case http.StatusTooManyRequests:
			limited++
		case http.StatusUnauthorized:
			passed++
		default:
			t.Fatalf("unexpected login status %d: %s", w.Code, w.Body.String())
		}
	}
	return passed, limited
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	passed, limited := loginAttempts(t, false, 20)
	if passed != 5 {
		t.Errorf("Expected the burst of 5 attempts to pass, got %d", passed)
	}
	if limited != 15 {
		t.Errorf("Expected 15 attempts to be limited despite rotating X-Forwarded-For, got %d", limited)
	}
}

func TestLoginRateLimitBehindTrustedProxy(t *testing.T) {
	// Each forwarded address gets its own bucket once the proxy is trusted
	passed, limited := loginAttempts(t, true, 20)
	if passed != 20 || limited != 0 {
		t.Errorf("Expected all 20 attempts to pass, got passed=%d limited=%d", passed, limited)
	}
}
