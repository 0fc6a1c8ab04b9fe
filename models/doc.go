// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API,
plus the voucher status state machine.

# Domain Types

  - Voucher: a resellable brand voucher (CODE or IMAGE) owned by one seller
  - VoucherEvent: one status change in a voucher's history
  - Owner: the authenticated seller
  - Brand: a catalog entry used for autocomplete and logos

# Status Machine

	UNUSED ──► SENT ──► SOLD ──► USED
	   │        ▲ │
	   │        └─┘ (re-send)
	   └──► EXPIRED

ValidateTransition enforces the arrows above:

	if err := models.ValidateTransition(models.StatusUnused, models.StatusSold); err != nil {
		// errors.Is(err, models.ErrInvalidTransition)
	}

USED and EXPIRED are terminal. SOLD and USED vouchers are read-only.

# Validation

CreateVoucherRequest.Normalize trims input and checks the type-specific
requirements (CODE needs a code, IMAGE needs an image_url).
NormalizeCustomerName enforces the 2-100 character customer name.

# Search

Voucher.MatchesQuery implements the free-text search used by list and
export: a case-insensitive substring match on brand, customer name, code,
or the value's decimal digits.
*/
package models
