package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/avivbaron/uri-analyzer/internal/analysis"
	"github.com/avivbaron/uri-analyzer/internal/models"
)

// Visits is the minimal interface our handlers need.
// analysis.Service satisfies this automatically.
type Visits interface {
	Ingest(ctx context.Context, lines []string) (analysis.IngestResult, error)
	DomainReport(ctx context.Context, level int) (models.DomainReport, error)
	SiteReport(ctx context.Context) (models.DomainReport, error)
}

type Handler struct {
	visits       Visits
	defaultLevel int
	maxBody      int64
}

func NewHandler(v Visits, defaultLevel int, maxBody int64) *Handler {
	if defaultLevel == 0 {
		defaultLevel = analysis.DefaultLevel
	}
	if maxBody <= 0 {
		maxBody = 4 << 20
	}
	return &Handler{visits: v, defaultLevel: defaultLevel, maxBody: maxBody}
}

// POST /api/visits
// {"lines":["100 example.com","50 www.example.com"]}
// or a text/plain body with one line per row.
func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)

	var lines []string
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "text/plain" {
		var err error
		if lines, err = analysis.ReadLines(body); err != nil {
			writeBodyErr(w, err)
			return
		}
	} else {
		var req models.IngestRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			writeBodyErr(w, err)
			return
		}
		lines = req.Lines
	}

	res, err := h.visits.Ingest(r.Context(), lines)
	if err != nil {
		writeVisitsErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/visits/domains?level=2
func (h *Handler) handleDomains(w http.ResponseWriter, r *http.Request) {
	level := h.defaultLevel
	if s := r.URL.Query().Get("level"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "level must be an integer")
			return
		}
		level = n
	}
	res, err := h.visits.DomainReport(r.Context(), level)
	if err != nil {
		writeVisitsErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/visits/sites
func (h *Handler) handleSites(w http.ResponseWriter, r *http.Request) {
	res, err := h.visits.SiteReport(r.Context())
	if err != nil {
		writeVisitsErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writeBodyErr(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
}

func writeVisitsErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrNilInput):
		writeError(w, http.StatusBadRequest, "lines are required")
	case errors.Is(err, analysis.ErrLevelOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
