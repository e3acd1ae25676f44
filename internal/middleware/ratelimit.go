// internal/middleware/ratelimit.go
//
// Per-client token-bucket rate limiting for the signup endpoint.
//
// Context
// -------
// Each key (client IP by default) gets its own `rate.Limiter`.  Entries idle
// for longer than `IdleTTL` are swept by a background goroutine that stops
// when the context passed to NewRateLimiter is cancelled.  Rejected requests
// increment `waitlist_rate_limited_total` and are answered by `OnLimited`
// (429 with Retry-After by default).
//
// Notes
// -----
// • RPS 0 disables limiting; Middleware then returns next unchanged.
// • Oxford commas, two spaces after periods.

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yanizio/waitlist/internal/metrics"
	"github.com/yanizio/waitlist/internal/requestinfo"
)

// RateLimitConfig tunes a RateLimiter.
type RateLimitConfig struct {
	RPS     float64
	Burst   int
	IdleTTL time.Duration // default 10m
	// KeyFunc returns the bucket key (defaults to client IP).
	KeyFunc func(r *http.Request) string
	// OnLimited writes the rejection (defaults to 429 text).
	OnLimited http.HandlerFunc
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter holds one token bucket per key.
type RateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter builds a limiter and starts its sweeper.
func NewRateLimiter(ctx context.Context, cfg RateLimitConfig) *RateLimiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(r *http.Request) string {
			if ip := requestinfo.ClientIP(r); ip != nil {
				return ip.String()
			}
			return r.RemoteAddr
		}
	}
	if cfg.OnLimited == nil {
		cfg.OnLimited = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Too many requests.  Please try again later.", http.StatusTooManyRequests)
		}
	}

	rl := &RateLimiter{
		cfg:      cfg,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
	if cfg.RPS > 0 {
		go rl.sweep(ctx)
	}
	return rl
}

// Allow reports whether key may proceed now.
func (rl *RateLimiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	v, hit := rl.visitors[key]
	if !hit {
		v = &visitor{lim: rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)}
		rl.visitors[key] = v
	}
	v.seen = now
	rl.mu.Unlock()

	res := v.lim.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Middleware rejects requests over the limit.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl.cfg.RPS <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.Allow(rl.cfg.KeyFunc(r))
		if !ok {
			metrics.RateLimitedTotal.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			rl.cfg.OnLimited(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Len reports the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func (rl *RateLimiter) sweep(ctx context.Context) {
	t := time.NewTicker(rl.cfg.IdleTTL / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	cutoff := rl.now().Add(-rl.cfg.IdleTTL)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, v := range rl.visitors {
		if v.seen.Before(cutoff) {
			delete(rl.visitors, k)
		}
	}
}
