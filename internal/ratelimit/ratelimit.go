// Package ratelimit paces outbound calls to the source host, one limiter
// per credential (§4.2: "the Host Client never issues two in-flight
// requests for the same credential faster than the host's advertised
// rate"). It generalizes the teacher's flat, single-tenant RateLimiter
// (infrastructure/ratelimit/ratelimit.go) to a per-credential registry whose
// budget is driven by the host's own rate-limit response headers rather
// than a fixed local config.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config seeds a credential's limiter before the first response headers are
// seen. The host's headers take over from there via Observe.
type Config struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig mirrors the host's documented unauthenticated-adjacent
// baseline; authenticated credentials quickly converge to their real quota
// once Observe starts reading response headers.
func DefaultConfig() Config {
	return Config{RequestsPerSecond: 10, Burst: 20}
}

// Limiter paces a single credential.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

func newLimiter(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RequestsPerSecond * 2)
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	lim := l.limiter
	l.mu.Unlock()
	return lim.Wait(ctx)
}

// Observe re-derives the limiter's rate from the host's rate-limit response
// headers (X-RateLimit-Remaining, X-RateLimit-Reset), so the budget tracks
// the host's actual accounting instead of a static guess. Spreads the
// remaining quota evenly across the time left until reset.
func (l *Limiter) Observe(header http.Header) {
	remaining, ok := parseInt(header.Get("X-RateLimit-Remaining"))
	if !ok {
		return
	}
	resetUnix, ok := parseInt(header.Get("X-RateLimit-Reset"))
	if !ok {
		return
	}
	until := time.Until(time.Unix(int64(resetUnix), 0))
	if until <= 0 || remaining <= 0 {
		return
	}
	rps := float64(remaining) / until.Seconds()
	if rps <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiter.SetLimit(rate.Limit(rps))
	if remaining < l.limiter.Burst() {
		l.limiter.SetBurst(remaining)
	}
}

func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Registry hands out one Limiter per credential ID, creating it lazily.
type Registry struct {
	mu       sync.Mutex
	cfg      Config
	limiters map[string]*Limiter
}

// NewRegistry builds a Registry seeding new credentials with cfg.
func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, limiters: make(map[string]*Limiter)}
}

// For returns the Limiter for a credential ID, creating it on first use.
func (r *Registry) For(credentialID string) *Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters[credentialID]; ok {
		return l
	}
	l := newLimiter(r.cfg)
	r.limiters[credentialID] = l
	return l
}
