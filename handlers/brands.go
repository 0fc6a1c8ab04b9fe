// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/voucher-manager/brands"
	"github.com/danielhkuo/voucher-manager/middleware"
	"github.com/danielhkuo/voucher-manager/models"
)

// Brand search page sizes
const (
	DefaultBrandLimit = 20
	MaxBrandLimit     = 100
)

type BrandHandler struct {
	catalog *brands.Catalog
}

func NewBrandHandler(catalog *brands.Catalog) *BrandHandler {
	return &BrandHandler{catalog: catalog}
}

// Search handles GET /brands?q=&limit=
func (h *BrandHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit := DefaultBrandLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxBrandLimit)
	}

	middleware.JSONResponse(w, http.StatusOK, models.BrandSearchResponse{
		Brands: h.catalog.Search(r.URL.Query().Get("q"), limit),
	})
}

// Lookup handles GET /brands/lookup?name=
func (h *BrandHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	brand, ok := h.catalog.Lookup(name)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Brand not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, brand)
}
