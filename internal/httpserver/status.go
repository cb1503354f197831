package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/avivbaron/uri-analyzer/internal/buildinfo"
)

type health struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// HandleHealth reports liveness; it never touches dependencies.
func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, health{Status: "ok", Time: time.Now().UTC()})
	}
}

// HandleReady pings the cache backend and reports how many records are held.
func HandleReady(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := map[string]any{"status": "ready", "time": time.Now().UTC()}
		if deps.Records != nil {
			out["records"] = deps.Records()
		}
		if deps.Cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Cache.Ping(ctx); err != nil {
				out["status"] = "unavailable"
				out["cache"] = err.Error()
				writeJSON(w, http.StatusServiceUnavailable, out)
				return
			}
			out["cache"] = "ok"
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func HandleVersion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	}
}
