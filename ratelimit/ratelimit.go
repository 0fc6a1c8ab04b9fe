// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/danielhkuo/voucher-manager/middleware"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key (client IP, owner+voucher, ...)
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
}

// NewLimiter creates a limiter allowing rps requests per second with the
// given burst per key.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// NewCooldown creates a limiter that lets one event per key through every
// interval. A zero interval disables limiting.
func NewCooldown(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{limiters: make(map[string]*entry), limit: rate.Inf, burst: 1}
	}
	return &Limiter{
		limiters: make(map[string]*entry),
		limit:    rate.Every(interval),
		burst:    1,
	}
}

// Allow reports whether an event for key may happen now
func (l *Limiter) Allow(key string) bool {
	return l.AllowAt(key, time.Now())
}

// AllowAt reports whether an event for key may happen at t
func (l *Limiter) AllowAt(key string, t time.Time) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = t
	l.mu.Unlock()

	return e.limiter.AllowN(t, 1)
}

// Cleanup drops keys not seen since maxAge ago and returns how many were
// dropped.
func (l *Limiter) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked keys
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware rejects requests over the limit with 429
func (l *Limiter) Middleware(keyFunc func(*http.Request) string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(keyFunc(r)) {
				middleware.ErrorResponse(w, http.StatusTooManyRequests, "Too many requests, slow down")
				return
			}
			next(w, r)
		}
	}
}

// IPKeyFunc keys requests by the connection's remote address. Forwarding
// headers are ignored since any client can set them.
func IPKeyFunc(r *http.Request) string {
	return middleware.RemoteIP(r)
}

// ProxyIPKeyFunc keys requests by the address a trusted reverse proxy put
// in X-Forwarded-For or X-Real-IP.
func ProxyIPKeyFunc(r *http.Request) string {
	return middleware.GetClientIP(r)
}
