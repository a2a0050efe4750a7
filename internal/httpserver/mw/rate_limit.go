package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitConfig configures a per-client-IP token bucket.
type RateLimitConfig struct {
	Burst             int // bucket size
	RefillPerIPPerMin int // tokens added per minute
	MaxEntries        int // sweep idle buckets once this many are tracked (0 = no cap)
	SweepInterval     time.Duration
	IdleTTL           time.Duration
	TrustProxy        bool // resolve IP from proxy headers when true

	Now func() time.Time // for testing, defaults to time.Now
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.Burst < 1 {
		c.Burst = 1
	}
	if c.RefillPerIPPerMin < 1 {
		c.RefillPerIPPerMin = 1
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type tokenBucket struct {
	mu      sync.Mutex
	tokens  float64
	updated time.Time
	seen    time.Time
}

type decision struct {
	allowed    bool
	remaining  int
	retryAfter int // seconds
}

type writeLimiter struct {
	cfg     RateLimitConfig
	perSec  float64
	mu      sync.Mutex
	clients map[string]*tokenBucket
	swept   time.Time
}

func newWriteLimiter(cfg RateLimitConfig) *writeLimiter {
	cfg = cfg.withDefaults()
	return &writeLimiter{
		cfg:     cfg,
		perSec:  float64(cfg.RefillPerIPPerMin) / 60,
		clients: make(map[string]*tokenBucket, 256),
		swept:   cfg.Now(),
	}
}

// bucketFor returns ip's bucket, creating a full one on first sight. Idle
// buckets are dropped every SweepInterval or when MaxEntries is reached.
func (l *writeLimiter) bucketFor(ip string, now time.Time) *tokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries
	if full || now.Sub(l.swept) >= l.cfg.SweepInterval {
		for key, b := range l.clients {
			if now.Sub(b.seen) > l.cfg.IdleTTL {
				delete(l.clients, key)
			}
		}
		l.swept = now
	}

	b, ok := l.clients[ip]
	if !ok {
		b = &tokenBucket{tokens: float64(l.cfg.Burst), updated: now}
		l.clients[ip] = b
	}
	return b
}

func (l *writeLimiter) take(ip string, now time.Time) decision {
	b := l.bucketFor(ip, now)

	b.mu.Lock()
	defer b.mu.Unlock()

	if dt := now.Sub(b.updated).Seconds(); dt > 0 {
		b.tokens = math.Min(float64(l.cfg.Burst), b.tokens+dt*l.perSec)
		b.updated = now
	}
	b.seen = now

	if b.tokens < 1 {
		wait := int(math.Ceil((1 - b.tokens) / l.perSec))
		return decision{retryAfter: max(wait, 1)}
	}
	b.tokens--
	return decision{allowed: true, remaining: int(b.tokens)}
}

// RateLimit limits requests per client IP. Every handler wrapped by the
// returned middleware shares the same buckets.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newWriteLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dec := l.take(ClientIP(r, l.cfg.TrustProxy), l.cfg.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(dec.remaining))
			if !dec.allowed {
				h.Set("Retry-After", strconv.Itoa(dec.retryAfter))
				writeMessage(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
