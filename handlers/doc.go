// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the voucher manager API.

# Handler Types

Each handler is a struct holding only the dependencies it uses:

  - AuthHandler: login, logout and the current owner
  - VoucherHandler: create, list, get, history and status counts
  - TransitionHandler: the four guarded status changes
  - ImportHandler: CSV import, the import template and CSV export
  - StatsHandler: overview, per-brand and per-denomination totals
  - ImageHandler: image upload and serving
  - BrandHandler: brand catalog search and lookup

Handlers are created via constructor functions:

	vouchers := handlers.NewVoucherHandler(st)

Every handler except Login, Template, Serve and the brand endpoints expects
middleware.RequireOwner in front of it and answers 401 without an owner in
the request context.

# Status Transitions

	POST /vouchers/{id}/sent     {expected_status, customer_name}
	POST /vouchers/{id}/sold     {expected_status}
	POST /vouchers/{id}/expired  {expected_status}
	POST /vouchers/{id}/used     {expected_status}

The client sends the status it last saw. Checks run in this order:

 1. input (400 INVALID_INPUT)
 2. the arrow expected_status → target (409 INVALID_TRANSITION)
 3. the per-voucher cooldown (429 TOO_FAST)
 4. the guarded update in the store (404 NOT_FOUND, 409 STATUS_CHANGED)

Both success and failure bodies are a models.TransitionResult.

# Import and Export

	POST /vouchers/import           multipart "file" or raw CSV body
	GET  /vouchers/import/template  sample CSV
	GET  /vouchers/export           ?status=&q=

Import validates every row, skips invalid and duplicate codes and inserts
the rest in one transaction.
*/
package handlers
