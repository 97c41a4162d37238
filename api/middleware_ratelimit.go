package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/raulk/clock"
	"go.uber.org/zap"

	"github.com/linesmerrill/jurychain-api/config"
	"github.com/linesmerrill/jurychain-api/metrics"
	"github.com/linesmerrill/jurychain-api/ratelimit"
)

// RateLimit rejects a client once it has made limit requests to the wrapped routes
// inside the window. Clients are keyed by IP and scope, so separate scopes keep
// separate budgets. A full memory limiter rejects new clients; any other limiter
// failure lets the request through. trustedProxies is passed to ClientIP.
func RateLimit(limiter ratelimit.Limiter, c clock.Clock, scope string, limit int, window time.Duration, trustedProxies int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r, trustedProxies)
			d, err := limiter.Allow(r.Context(), scope+":"+ip, limit, window)
			if errors.Is(err, ratelimit.ErrCapacityExceeded) {
				metrics.RateLimited(scope)
				config.ErrorStatus("too many requests, please wait before trying again", http.StatusTooManyRequests, w, err)
				return
			}
			if err != nil {
				zap.S().Errorw("rate limiter unavailable, allowing request",
					"scope", scope,
					"ip", ip,
					"error", err)
				next.ServeHTTP(w, r)
				return
			}

			if d.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
			}

			if !d.Allowed {
				metrics.RateLimited(scope)
				retry := d.RetryAfter(c.Now())
				w.Header().Set("Retry-After", strconv.Itoa(int((retry+time.Second-1)/time.Second)))
				config.ErrorStatus("too many requests, please wait before trying again", http.StatusTooManyRequests, w, ratelimit.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the caller's address. Each trusted proxy appends the address it
// received the request from to X-Forwarded-For, so the caller is the entry
// trustedProxies hops from the right; anything left of it was sent by the client.
// With no trusted proxies, or fewer hops than expected, the peer address is used.
func ClientIP(r *http.Request, trustedProxies int) string {
	if trustedProxies > 0 {
		var hops []string
		for _, header := range r.Header.Values("X-Forwarded-For") {
			for _, hop := range strings.Split(header, ",") {
				if hop = strings.TrimSpace(hop); hop != "" {
					hops = append(hops, hop)
				}
			}
		}
		if len(hops) >= trustedProxies {
			return hops[len(hops)-trustedProxies]
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
