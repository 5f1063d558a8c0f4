package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"sokoni-be/internal/logger"
	"sokoni-be/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	tierStrict   = "strict"
	tierGeneral  = "general"
	tierFrontend = "frontend"
	tierInternal = "internal"

	visitorIdle   = 3 * time.Minute
	sweepInterval = time.Minute
)

type tier struct {
	limit rate.Limit
	burst int
}

var defaultTiers = map[string]tier{
	// checkout submission takes stock and issues payment references
	tierStrict:   {limit: 2, burst: 5},
	tierGeneral:  {limit: 10, burst: 20},
	tierFrontend: {limit: 20, burst: 40},
	tierInternal: {limit: 100, burst: 200},
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per identity and tier. Idle buckets are
// swept on access, so no background goroutine is needed.
type RateLimiter struct {
	internalKey string
	tiers       map[string]tier
	now         func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// NewRateLimiter builds a limiter. Requests carrying internalKey in the
// X-Service-Auth header get the internal tier; an empty key disables it.
func NewRateLimiter(internalKey string) *RateLimiter {
	return &RateLimiter{
		internalKey: internalKey,
		tiers:       defaultTiers,
		now:         time.Now,
		visitors:    make(map[string]*visitor),
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := l.tierFor(r)
		key := identity(r) + ":" + name

		if !l.allow(key, l.tiers[name]) {
			logger.FromCtx(r.Context()).Warn("rate limited",
				zap.String("key", key),
				zap.String("path", r.URL.Path),
			)
			utils.WriteJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(key string, t tier) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorIdle {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(t.limit, t.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// size reports the number of tracked buckets.
func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *RateLimiter) tierFor(r *http.Request) string {
	if l.internalKey != "" && r.Header.Get("X-Service-Auth") == l.internalKey {
		return tierInternal
	}
	if r.Method == http.MethodPost && r.URL.Path == "/checkout" {
		return tierStrict
	}
	if r.Header.Get("X-Client-Type") == "frontend-heavy" {
		return tierFrontend
	}
	return tierGeneral
}

// identity keys authenticated requests on the user and everything else on the
// remote address. Session cookies are client supplied, so a guest could mint
// a fresh one per request; they never select a bucket.
func identity(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return "user:" + userID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
