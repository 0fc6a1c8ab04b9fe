// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/voucher-manager/middleware"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/testutil"
)

// asOwner attaches an authenticated owner the way RequireOwner does
func asOwner(r *http.Request, owner models.Owner) *http.Request {
	return r.WithContext(middleware.WithOwner(r.Context(), owner))
}

func TestLogin(t *testing.T) {
	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig(t)
	owner, _ := testutil.CreateTestOwner(t, st, cfg, "Seller@Example.com")
	handler := NewAuthHandler(st, cfg)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{"valid credentials", models.LoginRequest{Email: " seller@example.com ", Password: testutil.TestPassword}, http.StatusOK},
		{"wrong password", models.LoginRequest{Email: "seller@example.com", Password: "nope-nope-nope"}, http.StatusUnauthorized},
		{"unknown email", models.LoginRequest{Email: "ghost@example.com", Password: testutil.TestPassword}, http.StatusUnauthorized},
		{"missing password", models.LoginRequest{Email: "seller@example.com"}, http.StatusBadRequest},
		{"invalid json", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/login", tt.body, nil)
			w := httptest.NewRecorder()
			handler.Login(w, req)
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp models.LoginResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Token == "" {
				t.Error("expected a session token")
			}
			if resp.Owner.ID != owner.ID {
				t.Errorf("expected owner %s, got %s", owner.ID, resp.Owner.ID)
			}
			if !resp.ExpiresAt.After(owner.CreatedAt) {
				t.Errorf("expiry %v should be in the future", resp.ExpiresAt)
			}
		})
	}
}

func TestLoginTokenOpensSession(t *testing.T) {
	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig(t)
	testutil.CreateTestOwner(t, st, cfg, "seller@example.com")
	handler := NewAuthHandler(st, cfg)

	w := httptest.NewRecorder()
	handler.Login(w, testutil.MakeRequest("POST", "/auth/login",
		models.LoginRequest{Email: "seller@example.com", Password: testutil.TestPassword}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var login models.LoginResponse
	testutil.AssertJSON(t, w, &login)

	protect := middleware.RequireOwner(st, cfg.SessionSecret)

	w = httptest.NewRecorder()
	protect(handler.Me)(w, testutil.MakeRequest("GET", "/auth/me", nil, testutil.AuthHeader(login.Token)))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	protect(handler.Logout)(w, testutil.MakeRequest("POST", "/auth/logout", nil, testutil.AuthHeader(login.Token)))
	testutil.AssertStatus(t, w, http.StatusNoContent)

	// The token is dead after logout
	w = httptest.NewRecorder()
	protect(handler.Me)(w, testutil.MakeRequest("GET", "/auth/me", nil, testutil.AuthHeader(login.Token)))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestMeWithoutOwner(t *testing.T) {
	handler := NewAuthHandler(testutil.SetupTestStore(t), testutil.GetTestConfig(t))

	w := httptest.NewRecorder()
	handler.Me(w, testutil.MakeRequest("GET", "/auth/me", nil, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig(t)
	testutil.CreateTestOwner(t, st, cfg, "seller@example.com")
	handler := NewAuthHandler(st, cfg)

	login := func(email string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{Email: email, Password: "wrong-password"}, nil)
		w := httptest.NewRecorder()
		handler.Login(w, req)
		return w
	}

	known := login("seller@example.com")
	unknown := login("ghost@example.com")
	testutil.AssertStatus(t, known, http.StatusUnauthorized)
	testutil.AssertStatus(t, unknown, http.StatusUnauthorized)
	if known.Body.String() != unknown.Body.String() {
		t.Errorf("responses differ: %q vs %q", known.Body.String(), unknown.Body.String())
	}
}
