// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the voucher manager API.

# Route Registration

NewRouter creates a configured http.ServeMux from the shared services:

	mux := router.NewRouter(router.Deps{Store: st, Config: cfg, ...})

Every route except /health and /metrics is wrapped in request logging and
per-route Prometheus metrics. Owner routes also sit behind
middleware.RequireOwner.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Sessions:

	POST /auth/login  - Exchange email and password for a bearer token (rate limited per IP)
	POST /auth/logout - End the current session
	GET  /auth/me     - Current owner

Vouchers (bearer token):

	POST /vouchers             - Create
	GET  /vouchers             - List (?status=&q=&brand=&limit=&offset=)
	GET  /vouchers/counts      - Count per status
	GET  /vouchers/{id}        - Get one
	GET  /vouchers/{id}/events - Status history

Status changes (bearer token):

	POST /vouchers/{id}/sent
	POST /vouchers/{id}/sold
	POST /vouchers/{id}/expired
	POST /vouchers/{id}/used

CSV:

	POST /vouchers/import          - Import (bearer token)
	GET  /vouchers/import/template - Sample file
	GET  /vouchers/export          - Export (bearer token)

Stats (bearer token):

	GET /stats
	GET /stats/brands
	GET /stats/brands/{brand}

Images and brands:

	POST /images                - Upload (bearer token)
	GET  /images/{owner}/{file} - Serve
	GET  /brands                - Search the catalog (?q=&limit=)
	GET  /brands/lookup         - Best match for a brand name (?name=)
*/
package router
