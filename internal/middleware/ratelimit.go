package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// TokenBucket implements token bucket rate limiting
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	perSecond  float64
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket refills refillPerMinute tokens every minute, up to capacity.
func NewTokenBucket(capacity, refillPerMinute int) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		perSecond:  float64(refillPerMinute) / 60,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.perSecond
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// retryAfter is the wait until the next token, in whole seconds.
func (tb *TokenBucket) retryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.perSecond <= 0 {
		return 60
	}
	s := int((1-tb.tokens)/tb.perSecond) + 1
	if s < 1 {
		s = 1
	}
	return s
}

// RateLimiter manages rate limits per tenant
type RateLimiter struct {
	mu              sync.Mutex
	buckets         map[string]*TokenBucket
	capacity        int
	refillPerMinute int
}

func NewRateLimiter(capacity, refillPerMinute int) *RateLimiter {
	return &RateLimiter{
		buckets:         make(map[string]*TokenBucket),
		capacity:        capacity,
		refillPerMinute: refillPerMinute,
	}
}

func (rl *RateLimiter) bucket(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		b = NewTokenBucket(rl.capacity, rl.refillPerMinute)
		rl.buckets[key] = b
	}
	return b
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucket(key).Allow()
}

// Prune drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Prune(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	for key, b := range rl.buckets {
		b.mu.Lock()
		idle := now.Sub(b.lastRefill) > maxIdle
		b.mu.Unlock()
		if idle {
			delete(rl.buckets, key)
		}
	}
}

// RateLimit limits analysis requests per tenant. Model calls are the
// expensive part, so probes and metrics are never limited.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := GetTenantFromContext(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}
			b := limiter.bucket(key)
			if !b.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(b.retryAfter()))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
