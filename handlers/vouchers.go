// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/voucher-manager/middleware"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/store"
)

// MaxListLimit caps the page size of GET /vouchers
const MaxListLimit = 500

type VoucherHandler struct {
	st *store.Store
}

func NewVoucherHandler(st *store.Store) *VoucherHandler {
	return &VoucherHandler{st: st}
}

// CreateVoucher handles POST /vouchers
func (h *VoucherHandler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req models.CreateVoucherRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req, err := req.Normalize()
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.st.CreateVoucher(r.Context(), owner.ID, req, time.Now())
	if errors.Is(err, store.ErrDuplicateCode) {
		middleware.ErrorResponse(w, http.StatusConflict, "A voucher with this code already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create voucher", "error", err, "owner_id", owner.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create voucher")
		return
	}

	slog.Info("voucher created", "voucher_id", v.ID, "brand", v.Brand, "value", v.Value)

	middleware.JSONResponse(w, http.StatusCreated, v)
}

// parseListFilter reads status, q, brand, limit and offset
func parseListFilter(r *http.Request) (store.ListFilter, error) {
	q := r.URL.Query()
	f := store.ListFilter{
		Query: q.Get("q"),
		Brand: q.Get("brand"),
	}

	if raw := q.Get("status"); raw != "" && raw != "ALL" && raw != "all" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return f, errors.New("status must be one of UNUSED, SENT, SOLD, USED, EXPIRED")
		}
		f.Status = st
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, errors.New("limit must be a non-negative integer")
		}
		f.Limit = min(n, MaxListLimit)
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, errors.New("offset must be a non-negative integer")
		}
		f.Offset = n
	}

	return f, nil
}

// ListVouchers handles GET /vouchers
func (h *VoucherHandler) ListVouchers(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	vouchers, total, err := h.st.ListVouchers(r.Context(), owner.ID, filter)
	if err != nil {
		slog.Error("failed to list vouchers", "error", err, "owner_id", owner.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListVouchersResponse{
		Vouchers: vouchers,
		Total:    total,
	})
}

// GetVoucher handles GET /vouchers/{id}
func (h *VoucherHandler) GetVoucher(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	v, err := h.st.GetVoucher(r.Context(), owner.ID, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voucher not found")
		return
	}
	if err != nil {
		slog.Error("failed to query voucher", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, v)
}

// ListEvents handles GET /vouchers/{id}/events
func (h *VoucherHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	events, err := h.st.ListEvents(r.Context(), owner.ID, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voucher not found")
		return
	}
	if err != nil {
		slog.Error("failed to list voucher events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, events)
}

// StatusCounts handles GET /vouchers/counts
func (h *VoucherHandler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	counts, err := h.st.CountByStatus(r.Context(), owner.ID)
	if err != nil {
		slog.Error("failed to count vouchers", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatusCountsResponse{Counts: counts})
}
