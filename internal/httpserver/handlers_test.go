package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/avivbaron/uri-analyzer/internal/analysis"
	"github.com/avivbaron/uri-analyzer/internal/cache"
	"github.com/avivbaron/uri-analyzer/internal/models"
)

type fakeVisits struct {
	lines  []string
	levels []int
	err    error
}

func (f *fakeVisits) Ingest(ctx context.Context, lines []string) (analysis.IngestResult, error) {
	if f.err != nil {
		return analysis.IngestResult{}, f.err
	}
	if lines == nil {
		return analysis.IngestResult{}, fmt.Errorf("add data: %w", analysis.ErrNilInput)
	}
	f.lines = append(f.lines, lines...)
	return analysis.IngestResult{Accepted: len(f.lines), Added: len(lines)}, nil
}

func (f *fakeVisits) DomainReport(ctx context.Context, level int) (models.DomainReport, error) {
	f.levels = append(f.levels, level)
	if f.err != nil {
		return models.DomainReport{}, f.err
	}
	return models.DomainReport{Kind: analysis.KindLevel, Level: level, HasData: true, Timestamp: time.Unix(0, 0).UTC()}, nil
}

func (f *fakeVisits) SiteReport(ctx context.Context) (models.DomainReport, error) {
	if f.err != nil {
		return models.DomainReport{}, f.err
	}
	return models.DomainReport{Kind: analysis.KindSite, Timestamp: time.Unix(0, 0).UTC()}, nil
}

// TestHandleIngest_JSON posts a JSON batch.
// PASS: status=200 and the fake saw both lines.
// FAIL: wrong status or lines lost.
func TestHandleIngest_JSON(t *testing.T) {
	fv := &fakeVisits{}
	h := NewHandler(fv, 2, 0)
	body := `{"lines":["100 example.com","50 www.example.com"]}`
	r := httptest.NewRequest(http.MethodPost, "/api/visits", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.handleIngest(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if len(fv.lines) != 2 {
		t.Fatalf("lines=%v", fv.lines)
	}
}

// TestHandleIngest_PlainText posts one line per row, skipping blanks and comments.
// PASS: status=200 and exactly the two data rows reach the service.
// FAIL: comment/blank rows forwarded or rows lost.
func TestHandleIngest_PlainText(t *testing.T) {
	fv := &fakeVisits{}
	h := NewHandler(fv, 2, 0)
	body := "# export\n100 example.com\n\n50 www.example.com\n"
	r := httptest.NewRequest(http.MethodPost, "/api/visits", strings.NewReader(body))
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	w := httptest.NewRecorder()
	h.handleIngest(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if len(fv.lines) != 2 || fv.lines[0] != "100 example.com" {
		t.Fatalf("lines=%v", fv.lines)
	}
}

// TestHandleIngest_BadBodies maps malformed, missing and oversized bodies.
// PASS: each case returns the expected status code.
// FAIL: wrong status for any case.
func TestHandleIngest_BadBodies(t *testing.T) {
	cases := []struct {
		name string
		body string
		max  int64
		want int
	}{
		{"malformed", `{"lines":`, 0, http.StatusBadRequest},
		{"missing lines", `{}`, 0, http.StatusBadRequest},
		{"null lines", `{"lines":null}`, 0, http.StatusBadRequest},
		{"too large", `{"lines":["100 example.com"]}`, 8, http.StatusRequestEntityTooLarge},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := NewHandler(&fakeVisits{}, 2, c.max)
			r := httptest.NewRequest(http.MethodPost, "/api/visits", strings.NewReader(c.body))
			w := httptest.NewRecorder()
			h.handleIngest(w, r)
			if w.Code != c.want {
				t.Fatalf("want %d got %d", c.want, w.Code)
			}
		})
	}
}

// TestHandleDomains_Level checks the default level and explicit overrides.
// PASS: no query uses the configured default; ?level=3 passes 3; ?level=x is 400.
// FAIL: wrong level forwarded or wrong status.
func TestHandleDomains_Level(t *testing.T) {
	fv := &fakeVisits{}
	h := NewHandler(fv, 2, 0)

	for _, q := range []string{"", "?level=3"} {
		w := httptest.NewRecorder()
		h.handleDomains(w, httptest.NewRequest(http.MethodGet, "/api/visits/domains"+q, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%q: status=%d", q, w.Code)
		}
	}
	if len(fv.levels) != 2 || fv.levels[0] != 2 || fv.levels[1] != 3 {
		t.Fatalf("levels=%v", fv.levels)
	}

	w := httptest.NewRecorder()
	h.handleDomains(w, httptest.NewRequest(http.MethodGet, "/api/visits/domains?level=x", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400 got %d", w.Code)
	}
}

// TestHandleDomains_Errors validates HTTP error mapping for service errors.
// PASS: each case returns the expected status code.
// FAIL: wrong status for any case.
func TestHandleDomains_Errors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("report: %w", analysis.ErrLevelOutOfRange), http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		h := NewHandler(&fakeVisits{err: c.err}, 2, 0)
		w := httptest.NewRecorder()
		h.handleDomains(w, httptest.NewRequest(http.MethodGet, "/api/visits/domains", nil))
		if w.Code != c.want {
			t.Fatalf("%v: want %d got %d", c.err, c.want, w.Code)
		}
	}
}

// TestRouter_EndToEnd drives the full router over a real service.
// PASS: ingest reports one rejected line, level-1 report sums com visits,
// level 0 is rejected, and a wrong method is 405.
// FAIL: any status or body mismatch.
func TestRouter_EndToEnd(t *testing.T) {
	svc := analysis.NewService(analysis.NewAnalyzer(), cache.Noop{}, time.Minute, zerolog.Nop())
	router := NewRouter(zerolog.Nop(), nil, Deps{Visits: svc, Records: svc.Analyzer().Len, DefaultLevel: 2}, false)

	body := `{"lines":["100 https://www.a.com","20 b.com","x bad"]}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/visits", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("ingest status=%d", w.Code)
	}
	var ing analysis.IngestResult
	if err := json.Unmarshal(w.Body.Bytes(), &ing); err != nil {
		t.Fatalf("json: %v", err)
	}
	if ing.Accepted != 2 || len(ing.Errors) != 1 {
		t.Fatalf("ingest=%+v", ing)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/visits/domains?level=1", nil))
	var rep models.DomainReport
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !rep.HasData || len(rep.Domains) != 1 || rep.Domains[0] != (models.DomainCount{Domain: "com", Visits: 120}) {
		t.Fatalf("report=%+v", rep)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/visits/domains?level=0", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("level 0: status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/visits", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET ingest: status=%d", w.Code)
	}
}

type downCache struct{ cache.Noop }

func (downCache) Ping(context.Context) error { return errors.New("connection refused") }

// TestStatusEndpoints checks health, readiness and version.
// PASS: health and version are 200; ready is 200 with a live cache and 503 with a dead one.
// FAIL: any other status.
func TestStatusEndpoints(t *testing.T) {
	live := NewRouter(zerolog.Nop(), nil, Deps{Cache: cache.Noop{}}, false)
	for _, p := range []string{"/health", "/ready", "/version"} {
		w := httptest.NewRecorder()
		live.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", p, w.Code)
		}
	}

	dead := NewRouter(zerolog.Nop(), nil, Deps{Cache: downCache{}}, false)
	w := httptest.NewRecorder()
	dead.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready with dead cache: status=%d", w.Code)
	}
}
