// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/voucher-manager/middleware"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/stats"
	"github.com/danielhkuo/voucher-manager/store"
)

type StatsHandler struct {
	st *store.Store
}

func NewStatsHandler(st *store.Store) *StatsHandler {
	return &StatsHandler{st: st}
}

// allVouchers loads every voucher of the authenticated owner. It writes
// the error response itself and reports whether the caller may continue.
func (h *StatsHandler) allVouchers(w http.ResponseWriter, r *http.Request) ([]models.Voucher, bool) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return nil, false
	}

	vouchers, _, err := h.st.ListVouchers(r.Context(), owner.ID, store.ListFilter{})
	if err != nil {
		slog.Error("failed to load vouchers for stats", "error", err, "owner_id", owner.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return vouchers, true
}

// Overview handles GET /stats
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	vouchers, ok := h.allVouchers(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats.Overview(vouchers))
}

// Brands handles GET /stats/brands
func (h *StatsHandler) Brands(w http.ResponseWriter, r *http.Request) {
	vouchers, ok := h.allVouchers(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats.Brands(vouchers))
}

// BrandDetail handles GET /stats/brands/{brand}
func (h *StatsHandler) BrandDetail(w http.ResponseWriter, r *http.Request) {
	vouchers, ok := h.allVouchers(w, r)
	if !ok {
		return
	}

	detail, err := stats.BrandDetail(vouchers, r.PathValue("brand"))
	if errors.Is(err, stats.ErrUnknownBrand) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No vouchers for this brand")
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}
