// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/voucher-manager/auth"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/store"
)

// SessionLookup resolves a session token hash to its owner
type SessionLookup interface {
	GetSessionOwner(ctx context.Context, tokenHash string, now time.Time) (models.Owner, error)
}

type ownerKey struct{}
type tokenHashKey struct{}

// RequireOwner rejects requests without a valid bearer session and puts
// the owner in the request context
func RequireOwner(sessions SessionLookup, secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ParseBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				unauthorized(w)
				return
			}

			hash := auth.HashSessionToken(token, secret)
			owner, err := sessions.GetSessionOwner(r.Context(), hash, time.Now())
			if errors.Is(err, store.ErrNotFound) {
				unauthorized(w)
				return
			}
			if err != nil {
				slog.Error("failed to look up session", "error", err)
				ErrorResponse(w, http.StatusInternalServerError, "Database error")
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey{}, owner)
			ctx = context.WithValue(ctx, tokenHashKey{}, hash)
			next(w, r.WithContext(ctx))
		}
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="vouchers"`)
	ErrorResponse(w, http.StatusUnauthorized, "Valid bearer token required")
}

// OwnerFromContext returns the owner set by RequireOwner
func OwnerFromContext(ctx context.Context) (models.Owner, bool) {
	owner, ok := ctx.Value(ownerKey{}).(models.Owner)
	return owner, ok
}

// TokenHashFromContext returns the session token hash set by RequireOwner
func TokenHashFromContext(ctx context.Context) (string, bool) {
	hash, ok := ctx.Value(tokenHashKey{}).(string)
	return hash, ok
}

// WithOwner returns a context carrying owner, for handlers mounted
// without RequireOwner (tests, internal calls)
func WithOwner(ctx context.Context, owner models.Owner) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}
