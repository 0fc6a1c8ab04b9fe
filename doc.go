// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the voucher manager API server.

The voucher manager tracks brand vouchers a reseller buys and passes on to
customers. Each voucher moves UNUSED → SENT → SOLD → USED, or UNUSED →
EXPIRED, and every change is guarded against concurrent edits.

# Starting the Server

Only a session secret is required; everything else has a default:

	SESSION_SECRET=change-me go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -session-secret change-me

A .env file in the working directory is read when present.

# Configuration

  - SESSION_SECRET (-session-secret): HMAC key for session tokens (required)
  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): sqlite file or PostgreSQL URL (default: vouchers.db)
  - IMAGE_DIR (-images): upload directory (default: data/images)
  - PUBLIC_BASE_URL (-base-url): prefix of image links
  - BRANDS_FILE (-brands): JSON or HuJSON brand catalog
  - TRANSITION_COOLDOWN (-cooldown): minimum gap between status changes of one voucher (default: 3s)
  - TRUST_PROXY (-trust-proxy): key the login rate limit on X-Forwarded-For; only behind a reverse proxy
  - SESSION_TTL, MAX_IMAGE_BYTES, LOG_LEVEL, LOG_FORMAT

Owners are created with the voucherctl command (cmd/voucherctl).

# Architecture

  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, bearer sessions, JSON helpers
  - store: SQL persistence and the guarded status update
  - models: Domain types, validation and the status machine
  - csvio: CSV import and export
  - stats: Per-status, per-brand and per-denomination totals
  - brands: Brand catalog search and merging
  - storage: Uploaded images
  - ratelimit, metrics: Request throttling and Prometheus series
  - auth, db, cliparse: Tokens and passwords, connections and schema, configuration

See package documentation for each component.
*/
package main
