// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/voucher-manager/auth"
	"github.com/danielhkuo/voucher-manager/cliparse"
	"github.com/danielhkuo/voucher-manager/middleware"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/store"
)

type AuthHandler struct {
	st  *store.Store
	cfg cliparse.Config
}

func NewAuthHandler(st *store.Store, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{st: st, cfg: cfg}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := auth.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	owner, hash, err := h.st.GetOwnerByEmail(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		err = auth.RejectPassword(req.Password)
		slog.Warn("failed login", "email", email, "remote", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to query owner", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.CheckPassword(hash, req.Password); err != nil {
		slog.Warn("failed login", "email", email, "remote", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		slog.Error("failed to generate session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	expiresAt := time.Now().Add(h.cfg.SessionTTL).UTC()
	if err := h.st.CreateSession(r.Context(), auth.HashSessionToken(token, h.cfg.SessionSecret), owner.ID, expiresAt); err != nil {
		slog.Error("failed to create session", "error", err, "owner_id", owner.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("owner logged in", "owner_id", owner.ID)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Owner:     owner,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	hash, ok := middleware.TokenHashFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid bearer token required")
		return
	}

	if err := h.st.DeleteSession(r.Context(), hash); err != nil {
		slog.Error("failed to delete session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, owner)
}

// requireOwner fetches the owner put in the context by
// middleware.RequireOwner and answers 401 when it is missing.
func requireOwner(w http.ResponseWriter, r *http.Request) (models.Owner, bool) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid bearer token required")
		return models.Owner{}, false
	}
	return owner, true
}
