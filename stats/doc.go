// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package stats aggregates a seller's vouchers by status, brand and
// denomination. All functions are pure and operate on vouchers already
// loaded for one owner.
package stats
