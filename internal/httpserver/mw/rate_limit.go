package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// RateLimitConfig configures a per-client-IP token bucket.
type RateLimitConfig struct {
	Name              string // label for logs ("login", "fetch-cover")
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int           // sweep early once this many clients are tracked (0 = no cap)
	SweepInterval     time.Duration // default 1m
	IdleTTL           time.Duration // forget clients idle this long (default 15m)
	TrustProxy        bool          // resolve IP from proxy headers when true
	Now               func() time.Time
}

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one rate.Limiter per client IP and forgets idle ones.
type ipLimiter struct {
	cfg   RateLimitConfig
	every rate.Limit

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func newIPLimiter(cfg RateLimitConfig) *ipLimiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	cfg.Burst = max(cfg.Burst, 1)
	cfg.RefillPerIPPerMin = max(cfg.RefillPerIPPerMin, 1)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ipLimiter{
		cfg:       cfg,
		every:     rate.Limit(float64(cfg.RefillPerIPPerMin) / 60.0),
		clients:   make(map[string]*client),
		lastSweep: cfg.Now(),
	}
}

// limiterFor returns the client's limiter, sweeping idle entries when due.
func (l *ipLimiter) limiterFor(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries
	if full || now.Sub(l.lastSweep) >= l.cfg.SweepInterval {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) > l.cfg.IdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.every, l.cfg.Burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.lim
}

// take consumes one token. On refusal it returns the seconds until one is available.
func (l *ipLimiter) take(ip string, now time.Time) (ok bool, remaining, retryAfter int) {
	lim := l.limiterFor(ip, now)
	if lim.AllowN(now, 1) {
		return true, int(math.Floor(lim.TokensAt(now))), 0
	}
	missing := 1 - lim.TokensAt(now)
	return false, 0, max(int(math.Ceil(missing/float64(l.every))), 1)
}

// RateLimit throttles requests per client IP and answers 429 with Retry-After once the bucket is empty.
func RateLimit(cfg RateLimitConfig, log logger.Logger) func(http.Handler) http.Handler {
	l := newIPLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, l.cfg.TrustProxy)
			ok, remaining, retry := l.take(ip, l.cfg.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				h.Set("Retry-After", strconv.Itoa(retry))
				log.Warn("rate limit exceeded",
					logger.String("limiter", l.cfg.Name),
					logger.String("ip", ip),
					logger.Int("retry_after", retry))
				deny(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
