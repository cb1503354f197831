package httpserver

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avivbaron/uri-analyzer/internal/metrics"
	"github.com/avivbaron/uri-analyzer/internal/ratelimit"
)

type rlErr struct {
	Error        string `json:"error"`
	RetryAfterMs int64  `json:"retry_after_ms"`
}

// Bucket classes: writes and reads draw from separate budgets per client.
const (
	budgetIngest = "ingest"
	budgetRead   = "read"
)

// mwRateLimit throttles the visits API per client. Status routes and
// /metrics are never limited.
func mwRateLimit(lim *ratelimit.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		if lim == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			budget, limited := budgetFor(r)
			if !limited {
				next.ServeHTTP(w, r)
				return
			}
			allowed, retry := lim.Allow(budget + "|" + clientKey(r))
			if allowed {
				next.ServeHTTP(w, r)
				return
			}
			metrics.IncRateLimited(routeLabel(r.URL.Path))
			if retry <= 0 {
				retry = time.Second
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			writeJSON(w, http.StatusTooManyRequests, rlErr{
				Error:        budget + " rate limit exceeded",
				RetryAfterMs: retry.Milliseconds(),
			})
		})
	}
}

// budgetFor picks the bucket class for a request; ok is false for
// unlimited routes.
func budgetFor(r *http.Request) (budget string, ok bool) {
	if !strings.HasPrefix(r.URL.Path, "/api/") {
		return "", false
	}
	if r.Method == http.MethodPost {
		return budgetIngest, true
	}
	return budgetRead, true
}

// clientKey identifies the caller: API key first, then the first
// forwarded address, then the peer address.
func clientKey(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("X-API-Key")); k != "" {
		return "k:" + k
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		first, _, _ := strings.Cut(xf, ",")
		return "ip:" + strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
