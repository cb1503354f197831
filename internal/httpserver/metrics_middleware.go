package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avivbaron/uri-analyzer/internal/logs"
	"github.com/avivbaron/uri-analyzer/internal/metrics"
)

func mwMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		if metrics.M == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rl := logs.NewRespLogger(w)
			next.ServeHTTP(rl, r)
			labels := []string{r.Method, routeLabel(r.URL.Path), strconv.Itoa(rl.Status)}
			metrics.M.HTTPRequests.WithLabelValues(labels...).Inc()
			metrics.M.HTTPDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		})
	}
}

// routeLabel folds unknown paths into one series.
func routeLabel(path string) string {
	switch path {
	case "/api/visits", "/api/visits/domains", "/api/visits/sites",
		"/health", "/ready", "/version", "/metrics":
		return path
	}
	return "other"
}
