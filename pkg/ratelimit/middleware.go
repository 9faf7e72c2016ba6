package ratelimit

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/workforcedata/occsearch/pkg/httputil"
	"github.com/workforcedata/occsearch/pkg/observability"
)

// Middleware rejects requests over the limit with 429. Limiter failures
// are logged and the request is let through.
func Middleware(limiter Limiter, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + ClientIP(r)

			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				observability.FromContext(r.Context()).WithError(err).Warn("Rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

			if !decision.Allowed {
				if metrics != nil {
					metrics.RateLimitedTotal.Inc()
				}
				retryAfter := int(math.Ceil(time.Until(decision.Reset).Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
				httputil.WriteErrorMessage(w, http.StatusTooManyRequests,
					fmt.Sprintf("rate limit of %d requests exceeded", decision.Limit))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the originating client address: the first X-Forwarded-For
// entry, then X-Real-IP, then the connection's remote host
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
