package httpserver

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/avivbaron/uri-analyzer/internal/logs"
)

// mw = middleware
type Middleware func(http.Handler) http.Handler

// mwChain applies each middleware in declaration order so the earliest one wraps the handler last.
func mwChain(mwFuncs ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(mwFuncs) - 1; i >= 0; i-- {
			next = mwFuncs[i](next)
		}
		return next
	}
}

// mwRequestID reuses an inbound X-Request-ID or mints a new one.
func mwRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if id == "" || len(id) > 64 {
				id = newReqID()
			}
			r = r.WithContext(withReqID(r.Context(), id))
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r)
		})
	}
}

// mwRecover turns handler panics into 500s.
func mwRecover() Middleware { return middleware.Recoverer }

// mwCORS is a no-op when no origins are configured.
func mwCORS(origins []string) Middleware {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	})
}

// mwAccessLog records request and response details to the provided logger.
func mwAccessLog(logger zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rl := logs.NewRespLogger(w)
			next.ServeHTTP(rl, r)

			clientIP, _, _ := net.SplitHostPort(r.RemoteAddr)
			if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
				clientIP = strings.TrimSpace(strings.Split(xf, ",")[0])
			}

			ev := logger.Info()
			if rl.Status >= 500 {
				ev = logger.Error()
			}
			ev.Str("id", reqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rl.Status).
				Int("bytes", rl.Bytes).
				Str("ip", clientIP).
				Dur("dur", time.Since(start)).
				Msg("http")
		})
	}
}
