// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleSweep is how often idle per-key limiters are dropped.
const idleSweep = 5 * time.Minute

// Limiter is a keyed token-bucket limiter. Each key (usually a client IP)
// gets its own bucket. It is safe for concurrent use.
type Limiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

// New creates a limiter allowing perMinute requests per key per minute
// with bursts up to burst.
func New(perMinute float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		rate:        rate.Limit(perMinute / 60),
		burst:       burst,
		lastCleanup: time.Now(),
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	l.maybeCleanup()
	return v.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket is full again, which means the
// key has been idle.
func (l *Limiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastCleanup) < idleSweep {
		return
	}
	l.lastCleanup = time.Now()
	l.limiters.Range(func(k, v any) bool {
		if v.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(k)
		}
		return true
	})
}

// Allow reports whether a request for key may proceed and consumes a token
// when it may.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// RetryAfter estimates how long key must wait for its next token.
func (l *Limiter) RetryAfter(key string) time.Duration {
	r := l.get(key).Reserve()
	d := r.Delay()
	r.Cancel()
	return d
}

// Reset forgets key, giving it a full bucket on the next request.
func (l *Limiter) Reset(key string) {
	l.limiters.Delete(key)
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (comma-separated list, first is client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}

// SigninLimiter throttles signin attempts per client IP and per username,
// so that neither a single client nor a distributed attack on one account
// can guess passwords quickly.
type SigninLimiter struct {
	ip       *Limiter
	username *Limiter
}

// NewSigninLimiter builds a SigninLimiter. perMinute and burst apply per IP;
// the per-username bucket is half as generous.
func NewSigninLimiter(perMinute float64, burst int) *SigninLimiter {
	return &SigninLimiter{
		ip:       New(perMinute, burst),
		username: New(perMinute/2, max(burst/2, 1)),
	}
}

// Check reports whether a signin attempt may proceed. When it may not,
// retryAfter is the suggested wait.
func (s *SigninLimiter) Check(r *http.Request, username string) (ok bool, retryAfter time.Duration) {
	ip := ClientIP(r)
	if !s.ip.Allow(ip) {
		return false, s.ip.RetryAfter(ip)
	}
	if key := normalize(username); key != "" && !s.username.Allow(key) {
		return false, s.username.RetryAfter(key)
	}
	return true, 0
}

// ResetUsername clears the per-username bucket after a successful signin.
func (s *SigninLimiter) ResetUsername(username string) {
	if key := normalize(username); key != "" {
		s.username.Reset(key)
	}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
