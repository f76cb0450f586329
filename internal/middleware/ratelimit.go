package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cyberkid042/auth-identity-service/pkg/apierror"
)

// Scope selects which budget a request is charged against.
type Scope string

const (
	ScopeGeneral Scope = "general"
	ScopeAuth    Scope = "auth"
)

const defaultAuthRPM = 10

// Credential-accepting endpoints share the stricter auth budget. Token-gated
// reads such as /auth/profile are charged to the general budget.
var authScopedPaths = map[string]struct{}{
	"/auth/register": {},
	"/auth/login":    {},
	"/auth/refresh":  {},
}

var errRateLimited = apierror.RateLimited(apierror.CodeRateLimited, "Too many requests")

// RateLimiter decides whether the client identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string, scope Scope) (bool, error)
}

type clientLimiter struct {
	general  *rate.Limiter
	auth     *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter keeps per-client token buckets in process memory.
// A non-positive general budget disables general limiting; a non-positive
// auth budget falls back to the default.
type LocalRateLimiter struct {
	generalRPM int
	authRPM    int
	mu         sync.Mutex
	clients    map[string]*clientLimiter
}

func NewLocalRateLimiter(generalRPM int, authRPM int) *LocalRateLimiter {
	if authRPM <= 0 {
		authRPM = defaultAuthRPM
	}

	return &LocalRateLimiter{
		generalRPM: generalRPM,
		authRPM:    authRPM,
		clients:    map[string]*clientLimiter{},
	}
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string, scope Scope) (bool, error) {
	limiter := l.getLimiter(key)
	if scope == ScopeAuth {
		return limiter.auth.Allow(), nil
	}
	return limiter.general.Allow(), nil
}

func (l *LocalRateLimiter) getLimiter(key string) *clientLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.clients[key]; exists {
		limiter.lastSeen = time.Now()
		l.gcLocked()
		return limiter
	}

	created := &clientLimiter{
		general:  perMinute(l.generalRPM),
		auth:     perMinute(l.authRPM),
		lastSeen: time.Now(),
	}
	l.clients[key] = created
	l.gcLocked()

	return created
}

func (l *LocalRateLimiter) gcLocked() {
	if len(l.clients) < 1000 {
		return
	}

	cutoff := time.Now().Add(-10 * time.Minute)
	for key, limiter := range l.clients {
		if limiter.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

func perMinute(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
}

// RateLimit charges each request to its client's budget, keyed by the
// address ClientIP resolved. Limiter errors fail open.
func RateLimit(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIPFromRequest(r), scopeFor(r))
			if err != nil {
				slog.Warn("rate limiter unavailable; allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", "60")
				writeAPIError(w, errRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func scopeFor(r *http.Request) Scope {
	if _, ok := authScopedPaths[strings.TrimSuffix(r.URL.Path, "/")]; ok {
		return ScopeAuth
	}
	return ScopeGeneral
}
