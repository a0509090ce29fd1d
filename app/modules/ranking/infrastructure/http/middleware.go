package rankinghttp

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/jwt"
	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs.
	cleanupThreshold = 500
	// maxIdleAge is the duration after which an idle IP entry is eligible for cleanup.
	maxIdleAge = 10 * time.Minute
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter is an IP-based rate limiter that prunes stale entries inline.
type IPRateLimiter struct {
	ips map[string]*ipEntry
	mu  sync.Mutex
	r   rate.Limit
	b   int
	now func() time.Time
}

// NewIPRateLimiter creates a new IPRateLimiter allowing r requests per second
// with bursts of b.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*ipEntry),
		r:   r,
		b:   b,
		now: time.Now,
	}
}

// GetLimiter returns the limiter for ip, pruning stale entries when the map
// exceeds cleanupThreshold.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if len(i.ips) > cleanupThreshold {
		cutoff := now.Add(-maxIdleAge)
		for k, e := range i.ips {
			if e.lastSeen.Before(cutoff) {
				delete(i.ips, k)
			}
		}
	}

	e, exists := i.ips[ip]
	if !exists {
		e = &ipEntry{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = e
	}
	e.lastSeen = now

	return e.limiter
}

func (i *IPRateLimiter) size() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}

// RateLimitMiddleware rejects requests once the caller's IP exhausts its budget.
func RateLimitMiddleware(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.GetLimiter(ip).Allow() {
				writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type claimsKey struct{}

// ClaimsFrom returns the bearer claims stored by BearerAuthMiddleware.
func ClaimsFrom(ctx context.Context) (*jwt.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*jwt.Claims)
	return c, ok
}

// BearerAuthMiddleware requires a valid "Authorization: Bearer" token.
func BearerAuthMiddleware(tokens jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimSpace(raw))
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}
