package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry            *prometheus.Registry
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	CacheHits           *prometheus.CounterVec
	CacheMisses         *prometheus.CounterVec
	LinesAccepted       prometheus.Counter
	LinesRejected       prometheus.Counter
	RejectionReasons    *prometheus.CounterVec
	RecordsHeld         prometheus.Gauge
	AggregationDuration *prometheus.HistogramVec
	RateLimitBlocks     *prometheus.CounterVec
}

var M *Metrics

func Init(enabled bool) *Metrics {
	if !enabled {
		M = nil
		return nil
	}
	r := prometheus.NewRegistry()
	m := &Metrics{
		Registry:            r,
		HTTPRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests total"}, []string{"method", "path", "status"}),
		HTTPDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration", Buckets: prometheus.DefBuckets}, []string{"method", "path", "status"}),
		CacheHits:           prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cache_hits_total", Help: "Cache hits"}, []string{"op"}),
		CacheMisses:         prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cache_misses_total", Help: "Cache misses"}, []string{"op"}),
		LinesAccepted:       prometheus.NewCounter(prometheus.CounterOpts{Name: "visit_lines_accepted_total", Help: "Input lines accepted as records"}),
		LinesRejected:       prometheus.NewCounter(prometheus.CounterOpts{Name: "visit_lines_rejected_total", Help: "Input lines rejected"}),
		RejectionReasons:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "visit_line_rejection_reasons_total", Help: "Rejection reasons; a line may carry several"}, []string{"reason"}),
		RecordsHeld:         prometheus.NewGauge(prometheus.GaugeOpts{Name: "visit_records", Help: "Records currently held by the analyzer"}),
		AggregationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "aggregation_duration_seconds", Help: "Visit aggregation duration", Buckets: prometheus.DefBuckets}, []string{"kind", "level"}),
		RateLimitBlocks:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "rate_limit_blocks_total", Help: "Requests blocked by rate limiter"}, []string{"path"}),
	}
	r.MustRegister(m.HTTPRequests, m.HTTPDuration, m.CacheHits, m.CacheMisses,
		m.LinesAccepted, m.LinesRejected, m.RejectionReasons, m.RecordsHeld, m.AggregationDuration, m.RateLimitBlocks)
	M = m
	return m
}

func Handler() http.Handler {
	return promhttp.HandlerFor(M.Registry, promhttp.HandlerOpts{})
}

// helpers (safe no-ops if M==nil)
func IncHit(op string) {
	if M != nil {
		M.CacheHits.WithLabelValues(op).Inc()
	}
}

func IncMiss(op string) {
	if M != nil {
		M.CacheMisses.WithLabelValues(op).Inc()
	}
}

// ObserveIngest records one batch: accepted lines, rejected lines, every
// rejection reason and the analyzer's record count afterwards.
func ObserveIngest(accepted int, rejected [][]string, held int) {
	if M == nil {
		return
	}
	M.LinesAccepted.Add(float64(accepted))
	M.LinesRejected.Add(float64(len(rejected)))
	for _, reasons := range rejected {
		for _, reason := range reasons {
			M.RejectionReasons.WithLabelValues(reason).Inc()
		}
	}
	M.RecordsHeld.Set(float64(held))
}

func ObserveAggregation(kind string, level int, start time.Time) {
	if M != nil {
		M.AggregationDuration.WithLabelValues(kind, strconv.Itoa(level)).Observe(time.Since(start).Seconds())
	}
}

func IncRateLimited(path string) {
	if M != nil {
		M.RateLimitBlocks.WithLabelValues(path).Inc()
	}
}
