package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/platform/httputil"
)

// Middleware limits requests per client IP. RemoteAddr is expected to be the
// real client address (chi's RealIP runs first).
type Middleware struct {
	store  Store
	limit  int
	window time.Duration
	logger *slog.Logger
}

func NewMiddleware(store Store, limit int, window time.Duration, logger *slog.Logger) *Middleware {
	return &Middleware{store: store, limit: limit, window: window, logger: logger}
}

// Limit wraps next under the named bucket. A limit of zero or less disables it.
func (m *Middleware) Limit(bucket string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			result, err := m.store.Allow(ctx, bucket+":"+clientIP(r), m.limit, m.window)
			if err != nil {
				// Fails open.
				m.logger.ErrorContext(ctx, "rate limit check failed", "bucket", bucket, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			if !result.Allowed {
				retry := int(time.Until(result.ResetAt).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				m.logger.WarnContext(ctx, "rate limit exceeded", "bucket", bucket)
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
