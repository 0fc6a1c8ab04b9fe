// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/voucher-manager/metrics"
	"github.com/danielhkuo/voucher-manager/middleware"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/ratelimit"
	"github.com/danielhkuo/voucher-manager/store"
)

// TransitionHandler serves the guarded status changes. Every response,
// success or not, is a models.TransitionResult.
type TransitionHandler struct {
	st       *store.Store
	cooldown *ratelimit.Limiter
	metrics  *metrics.Metrics
}

func NewTransitionHandler(st *store.Store, cooldown *ratelimit.Limiter, m *metrics.Metrics) *TransitionHandler {
	return &TransitionHandler{st: st, cooldown: cooldown, metrics: m}
}

// MarkSent handles POST /vouchers/{id}/sent
func (h *TransitionHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusSent)
}

// MarkSold handles POST /vouchers/{id}/sold
func (h *TransitionHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusSold)
}

// MarkExpired handles POST /vouchers/{id}/expired
func (h *TransitionHandler) MarkExpired(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusExpired)
}

// MarkUsed handles POST /vouchers/{id}/used
func (h *TransitionHandler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusUsed)
}

var resultStatus = map[string]int{
	models.CodeInvalidInput:      http.StatusBadRequest,
	models.CodeNotFound:          http.StatusNotFound,
	models.CodeInvalidTransition: http.StatusConflict,
	models.CodeStatusChanged:     http.StatusConflict,
	models.CodeTooFast:           http.StatusTooManyRequests,
}

func (h *TransitionHandler) fail(w http.ResponseWriter, target models.Status, res models.TransitionResult) {
	h.metrics.Transition(string(target), res.Code)
	middleware.JSONResponse(w, resultStatus[res.Code], res)
}

func (h *TransitionHandler) transition(w http.ResponseWriter, r *http.Request, target models.Status) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	voucherID := r.PathValue("id")
	if voucherID == "" {
		h.fail(w, target, models.TransitionResult{Code: models.CodeInvalidInput, Error: "voucher id is required"})
		return
	}

	var req models.TransitionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		h.fail(w, target, models.TransitionResult{Code: models.CodeInvalidInput, Error: "Invalid JSON"})
		return
	}

	expected, err := models.ParseStatus(string(req.ExpectedStatus))
	if err != nil {
		h.fail(w, target, models.TransitionResult{Code: models.CodeInvalidInput, Error: "expected_status must be a known status"})
		return
	}

	var customer string
	if target == models.StatusSent {
		customer, err = models.NormalizeCustomerName(req.CustomerName)
		if err != nil {
			h.fail(w, target, models.TransitionResult{Code: models.CodeInvalidInput, Error: err.Error()})
			return
		}
	}

	// Reject impossible arrows before they count against the cooldown
	if err := models.ValidateTransition(expected, target); err != nil {
		h.fail(w, target, models.TransitionResult{
			Code:          models.CodeInvalidTransition,
			Error:         err.Error(),
			CurrentStatus: expected,
		})
		return
	}

	if !h.cooldown.Allow(owner.ID + ":" + voucherID) {
		h.fail(w, target, models.TransitionResult{Code: models.CodeTooFast, Error: "Please wait before changing this voucher again"})
		return
	}

	v, err := h.st.Transition(r.Context(), store.TransitionParams{
		OwnerID:      owner.ID,
		VoucherID:    voucherID,
		Expected:     expected,
		Target:       target,
		CustomerName: customer,
		Now:          time.Now(),
	})

	var changed *store.StatusChangedError
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		h.fail(w, target, models.TransitionResult{Code: models.CodeNotFound, Error: "Voucher not found"})
		return
	case errors.As(err, &changed):
		h.fail(w, target, models.TransitionResult{
			Code:          models.CodeStatusChanged,
			Error:         "Voucher status was changed by someone else, reload and try again",
			CurrentStatus: changed.Current,
		})
		return
	case errors.Is(err, models.ErrInvalidTransition):
		h.fail(w, target, models.TransitionResult{Code: models.CodeInvalidTransition, Error: err.Error()})
		return
	default:
		slog.Error("failed to change voucher status", "error", err, "voucher_id", voucherID, "target", target)
		h.metrics.Transition(string(target), "ERROR")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("voucher status changed",
		"voucher_id", v.ID,
		"from", expected,
		"to", v.Status,
	)
	h.metrics.Transition(string(target), "OK")

	middleware.JSONResponse(w, http.StatusOK, models.TransitionResult{
		Success:       true,
		CurrentStatus: v.Status,
		Voucher:       &v,
	})
}
