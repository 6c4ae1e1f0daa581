package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
)

// visitorTTL is how long an idle client keeps its bucket.
const visitorTTL = 5 * time.Minute

// RateLimiter hands each client host a token bucket holding at most rate
// tokens, refilled continuously at rate per interval.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     float64
	perToken time.Duration
	now      func() time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter allows bursts of rate requests and rate per interval after that.
// Buckets idle for visitorTTL are dropped each minute until ctx is done.
// PRE: rate > 0; interval > 0
func NewRateLimiter(ctx context.Context, rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*bucket),
		rate:     float64(rate),
		perToken: interval / time.Duration(rate),
		now:      time.Now,
	}
	go func() {
		sweeps := time.NewTicker(time.Minute)
		defer sweeps.Stop()
		for {
			select {
			case <-sweeps.C:
				rl.sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
	return rl
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-visitorTTL)
	for host, b := range rl.visitors {
		if b.seen.Before(cutoff) {
			delete(rl.visitors, host)
		}
	}
}

// Allow spends one token from key's bucket.
// POST: false leaves the bucket unchanged apart from its refill
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.visitors[key]
	if !ok {
		b = &bucket{tokens: rl.rate, seen: now}
		rl.visitors[key] = b
	}
	b.tokens = min(rl.rate, b.tokens+float64(now.Sub(b.seen))/float64(rl.perToken))
	b.seen = now
	if b.tokens < 1 {
		slog.Warn("rate_limit_exceeded", "client", key)
		return false
	}
	b.tokens--
	return true
}

// RateLimit returns middleware that limits requests per client host.
// A nil limiter disables limiting.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientHost(r)) {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders adds OWASP recommended headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self'; img-src 'self' data:; connect-src 'self'")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// CSRF protects form and multipart posts with gorilla/csrf.
// authKey must be 32 bytes. JSON and CSV API requests are exempt, as are PUT and
// DELETE; browsers preflight those cross-origin.
func CSRF(authKey []byte, secure bool, trustedOrigins ...string) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trustedOrigins),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || apiContentType(r.Header.Get("Content-Type")) {
				next.ServeHTTP(w, r)
				return
			}
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func apiContentType(ct string) bool {
	return strings.HasPrefix(ct, "application/json") || strings.HasPrefix(ct, "text/csv")
}

// Chain wraps h so that the last middleware listed runs first.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
