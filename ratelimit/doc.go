// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ratelimit provides keyed token-bucket limiters.

Two shapes are used by the service:

	login := ratelimit.NewLimiter(1, 5)             // per client IP
	cooldown := ratelimit.NewCooldown(3*time.Second) // per owner+voucher

Idle keys are dropped by Cleanup, which the server runs periodically.
*/
package ratelimit
