// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package storage is the public image bucket for IMAGE vouchers. Uploads
// are size-limited, sniffed for an image content type, and written
// atomically under <owner_id>/<unix_ms>.<ext>.
package storage
