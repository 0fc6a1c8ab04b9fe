// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/voucher-manager/brands"
	"github.com/danielhkuo/voucher-manager/cliparse"
	"github.com/danielhkuo/voucher-manager/handlers"
	"github.com/danielhkuo/voucher-manager/metrics"
	"github.com/danielhkuo/voucher-manager/middleware"
	"github.com/danielhkuo/voucher-manager/ratelimit"
	"github.com/danielhkuo/voucher-manager/storage"
	"github.com/danielhkuo/voucher-manager/store"
)

// Deps are the long-lived services the routes are built on
type Deps struct {
	Store    *store.Store
	Config   cliparse.Config
	Catalog  *brands.Catalog
	Images   *storage.ImageStore
	Metrics  *metrics.Metrics
	Cooldown *ratelimit.Limiter // per (owner, voucher) transition cooldown
	Login    *ratelimit.Limiter // per client IP
}

func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(d.Store, d.Config)
	voucherHandler := handlers.NewVoucherHandler(d.Store)
	transitionHandler := handlers.NewTransitionHandler(d.Store, d.Cooldown, d.Metrics)
	importHandler := handlers.NewImportHandler(d.Store, d.Metrics)
	statsHandler := handlers.NewStatsHandler(d.Store)
	imageHandler := handlers.NewImageHandler(d.Images)
	brandHandler := handlers.NewBrandHandler(d.Catalog)

	requireOwner := middleware.RequireOwner(d.Store, d.Config.SessionSecret)

	// public registers a route with logging and request metrics
	public := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, d.Metrics.Middleware(pattern)(middleware.WithLogging(h)))
	}
	// owned additionally requires a bearer session
	owned := func(pattern string, h http.HandlerFunc) {
		public(pattern, requireOwner(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", d.Metrics.Handler())

	// Sessions
	loginKey := ratelimit.IPKeyFunc
	if d.Config.TrustProxy {
		loginKey = ratelimit.ProxyIPKeyFunc
	}
	public("POST /auth/login", d.Login.Middleware(loginKey)(authHandler.Login))
	owned("POST /auth/logout", authHandler.Logout)
	owned("GET /auth/me", authHandler.Me)

	// Vouchers
	owned("POST /vouchers", voucherHandler.CreateVoucher)
	owned("GET /vouchers", voucherHandler.ListVouchers)
	owned("GET /vouchers/counts", voucherHandler.StatusCounts)
	owned("GET /vouchers/{id}", voucherHandler.GetVoucher)
	owned("GET /vouchers/{id}/events", voucherHandler.ListEvents)

	// Guarded status changes
	owned("POST /vouchers/{id}/sent", transitionHandler.MarkSent)
	owned("POST /vouchers/{id}/sold", transitionHandler.MarkSold)
	owned("POST /vouchers/{id}/expired", transitionHandler.MarkExpired)
	owned("POST /vouchers/{id}/used", transitionHandler.MarkUsed)

	// CSV
	owned("POST /vouchers/import", importHandler.Import)
	public("GET /vouchers/import/template", importHandler.Template)
	owned("GET /vouchers/export", importHandler.Export)

	// Stats
	owned("GET /stats", statsHandler.Overview)
	owned("GET /stats/brands", statsHandler.Brands)
	owned("GET /stats/brands/{brand}", statsHandler.BrandDetail)

	// Images
	owned("POST /images", imageHandler.Upload)
	public("GET /images/{owner}/{file}", imageHandler.Serve)

	// Brand catalog
	public("GET /brands", brandHandler.Search)
	public("GET /brands/lookup", brandHandler.Lookup)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("voucher-manager API v1"))
	})

	return mux
}
