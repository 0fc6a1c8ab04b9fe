// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"strconv"
	"strings"
)

// MatchesQuery reports whether the voucher matches a free-text search.
// The query is compared case-insensitively as a substring of the brand,
// customer name, code, or the decimal value. An empty query matches all.
func (v Voucher) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	if strings.Contains(strings.ToLower(v.Brand), q) {
		return true
	}
	if v.CustomerName != nil && strings.Contains(strings.ToLower(*v.CustomerName), q) {
		return true
	}
	if v.Code != nil && strings.Contains(strings.ToLower(*v.Code), q) {
		return true
	}
	return strings.Contains(strconv.FormatInt(v.Value, 10), q)
}

// FilterVouchers keeps the vouchers matching query, preserving order.
func FilterVouchers(vouchers []Voucher, query string) []Voucher {
	if strings.TrimSpace(query) == "" {
		return vouchers
	}

	out := make([]Voucher, 0, len(vouchers))
	for _, v := range vouchers {
		if v.MatchesQuery(query) {
			out = append(out, v)
		}
	}
	return out
}
