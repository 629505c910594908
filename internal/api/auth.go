package api

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"sync"

	"glowup/internal/config"
	"glowup/internal/domain"

	"golang.org/x/time/rate"
)

// AdminTokenHeader carries the shared admin secret.
const AdminTokenHeader = "X-Admin-Token"

// TokenAuthenticator grants the admin role to any holder of the shared
// secret. There is no per-admin identity.
type TokenAuthenticator struct {
	token string
}

func NewTokenAuthenticator(token string) *TokenAuthenticator {
	return &TokenAuthenticator{token: token}
}

func (a *TokenAuthenticator) Authenticate(token string) bool {
	if a.token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.token), []byte(token)) == 1
}

// Guard applies per-client rate limiting to every request and exposes
// the admin check used by protected handlers.
type Guard struct {
	auth     domain.Authenticator
	cfg      config.ServerRateLimit
	limiters sync.Map // map[string]*rate.Limiter
}

func NewGuard(auth domain.Authenticator, cfg config.ServerRateLimit) *Guard {
	return &Guard{auth: auth, cfg: cfg}
}

// IsAdmin reports whether the request carries a valid admin token.
func (g *Guard) IsAdmin(r *http.Request) bool {
	return g.auth.Authenticate(strings.TrimSpace(r.Header.Get(AdminTokenHeader)))
}

// Wrap enforces the rate limit before passing the request on.
func (g *Guard) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.cfg.RPS > 0 {
			lim := g.getLimiter(g.clientKey(r))
			if !lim.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) clientKey(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(AdminTokenHeader)); token != "" {
		return token
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (g *Guard) getLimiter(key string) *rate.Limiter {
	if v, ok := g.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := g.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(g.cfg.RPS), burst)
	actual, loaded := g.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
