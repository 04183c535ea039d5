// Package observer provides an optional live-streaming surface for phase
// transitions, for external dashboards or a browser tab — not part of the
// engine's public contract.
//
// The connection admission policy below is itself a small trust field: each
// remote address is a context, and a burst of reconnects is a run of
// negative interactions against it. A freshly-seen address gets the plain
// sliding-window budget; an address with a long history of clean connections
// earns the same "one burst doesn't erase earned trust" grace the coherence
// field gives any other context (see internal/trust's EffectiveCoherence).
package observer

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/talgya/trustfield/internal/ctxkey"
	"github.com/talgya/trustfield/internal/personality"
	"github.com/talgya/trustfield/internal/phase"
	"github.com/talgya/trustfield/internal/trust"
	"github.com/talgya/trustfield/internal/vector"
)

// graceThreshold is the bar an address's effective coherence, read with zero
// instantaneous evidence (0.7 × its accumulated coherence once familiar, 0
// while unfamiliar), must reach for it to be admitted after its
// sliding-window budget is spent. Pinned to the same
// coh_hi used by phase classification, so "this address is trustworthy" and
// "this context reads as QuietlyBeloved" are the same bar.
var graceThreshold = phase.DefaultThresholds().CoherenceHi

// addressFieldCapacity bounds how many distinct remote addresses the
// limiter tracks trust for at once; least-recently-active addresses are
// evicted first, exactly as any other bounded coherence field.
const addressFieldCapacity = 4096

// RateLimiter tracks connection attempts per remote address with a sliding
// window, guarding the websocket upgrade endpoint against reconnect storms.
// Budget exhaustion is not an automatic rejection — an address that has
// earned enough trust over many prior clean connections is still admitted.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	maxRate int
	window  time.Duration

	trust *trust.Field
	p     personality.Personality
	tick  uint64
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a rate limiter allowing maxRate attempts per window,
// with earned-trust grace beyond that for long-lived, well-behaved addresses.
func NewRateLimiter(maxRate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		maxRate: maxRate,
		window:  window,
		trust:   trust.New(addressFieldCapacity),
		p:       personality.New().WithRecovery(0.8), // forgives a single bad burst quickly
	}
	go func() {
		for {
			time.Sleep(time.Hour)
			rl.cleanup()
		}
	}()
	return rl
}

// Allow reports whether addr is within its rate limit, or has earned enough
// standing trust to be admitted anyway.
func (rl *RateLimiter) Allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tick++
	k := addrKey(addr)

	b, ok := rl.buckets[addr]
	now := time.Now()

	if !ok || now.Sub(b.lastReset) >= rl.window {
		rl.buckets[addr] = &bucket{tokens: rl.maxRate - 1, lastReset: now}
		rl.trust.PositiveInteraction(k, rl.p, rl.tick, false)
		return true
	}

	if b.tokens > 0 {
		b.tokens--
		rl.trust.PositiveInteraction(k, rl.p, rl.tick, false)
		return true
	}

	earned := rl.trust.EffectiveCoherence(0, k)
	rl.trust.NegativeInteraction(k, rl.p, rl.tick)
	return earned >= graceThreshold
}

// RetryAfter returns how many seconds until addr's window resets.
func (rl *RateLimiter) RetryAfter(addr string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[addr]
	if !ok {
		return 0
	}
	remaining := rl.window - time.Since(b.lastReset)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for addr, b := range rl.buckets {
		if now.Sub(b.lastReset) > 2*rl.window {
			delete(rl.buckets, addr)
		}
	}
}

// addrKey folds a remote address string into a stable context key, the same
// way any other sensor reading becomes a ctxkey.Key — XOR-folded into eight
// components so the whole address (not just a prefix) feeds the hash.
func addrKey(addr string) ctxkey.Key {
	folded := make([]byte, 8)
	for i := 0; i < len(addr); i++ {
		folded[i%8] ^= addr[i]
	}
	components := make([]float64, 8)
	for i, b := range folded {
		components[i] = float64(b) / 255.0
	}
	return ctxkey.New(vector.New(components...))
}

func remoteHost(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}

// rateLimited wraps an http.HandlerFunc, rejecting with 429 when the
// remote address has exceeded rl's window and earned no grace.
func rateLimited(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr := remoteHost(r.RemoteAddr)
		if !rl.Allow(addr) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(addr)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
