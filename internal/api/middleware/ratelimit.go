package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rrens/auth-service/internal/api/response"
	"github.com/Rrens/auth-service/internal/apperror"
	"github.com/Rrens/auth-service/internal/metrics"
)

// LoginLimitMessage is returned once a client exhausts its login attempts
const LoginLimitMessage = "Too many login attempts, please try again after 60 seconds"

// Limiter counts hits per key inside a fixed window
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, resetAt time.Time, err error)
	Limit() int
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	limiter Limiter
	message string
	metrics *metrics.Metrics
	dev     bool
}

// NewRateLimitMiddleware creates a new rate limit middleware. m may be nil.
func NewRateLimitMiddleware(limiter Limiter, message string, m *metrics.Metrics, dev bool) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, message: message, metrics: m, dev: dev}
}

// Limit applies rate limiting based on the client IP
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, resetAt, err := m.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			// fail open
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limiter.Limit()))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			m.metrics.ObserveRateLimited()
			if wait := time.Until(resetAt); wait > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second).Seconds())))
			}
			response.Error(w, r, apperror.TooManyRequests(m.message), m.dev)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port chi's RealIP leaves in place when no proxy header was sent
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
