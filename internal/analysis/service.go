package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/avivbaron/uri-analyzer/internal/cache"
	"github.com/avivbaron/uri-analyzer/internal/metrics"
	"github.com/avivbaron/uri-analyzer/internal/models"
)

const (
	KindLevel = "level"
	KindSite  = "site"
)

// Service fronts an Analyzer with report caching, metrics and logging.
type Service struct {
	analyzer *Analyzer
	cache    cache.Cache
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(a *Analyzer, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{analyzer: a, cache: c, ttl: ttl, logger: logger, now: time.Now}
}

func (s *Service) Analyzer() *Analyzer { return s.analyzer }

// Ingest adds a batch to the analyzer and records what happened to it.
func (s *Service) Ingest(ctx context.Context, lines []string) (IngestResult, error) {
	res, err := s.analyzer.AddData(lines)
	if err != nil {
		return res, err
	}

	rejected := make([][]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		rejected = append(rejected, e.Reasons)
		s.logger.Debug().Str("line", e.Line).Strs("reasons", e.Reasons).Msg("line rejected")
	}
	metrics.ObserveIngest(res.Added, rejected, res.Accepted)

	s.logger.Info().
		Int("lines", len(lines)).
		Int("added", res.Added).
		Int("rejected", len(res.Errors)).
		Int("records", res.Accepted).
		Msg("batch ingested")
	return res, nil
}

// DomainReport aggregates visits at the given domain level.
func (s *Service) DomainReport(ctx context.Context, level int) (models.DomainReport, error) {
	if _, err := DomainLevelPattern(level); err != nil {
		return models.DomainReport{}, err
	}
	return s.report(ctx, KindLevel, level, func() (map[string]int, int, error) {
		return s.analyzer.levelVisits(level)
	})
}

// SiteReport aggregates visits per registrable domain.
func (s *Service) SiteReport(ctx context.Context) (models.DomainReport, error) {
	return s.report(ctx, KindSite, 0, func() (map[string]int, int, error) {
		visits, held := s.analyzer.siteVisits()
		return visits, held, nil
	})
}

// report serves from cache when the analyzer hasn't changed since the
// cached report was built. Records are append-only, so the record count
// is a version of the data set.
func (s *Service) report(ctx context.Context, kind string, level int, compute func() (map[string]int, int, error)) (models.DomainReport, error) {
	var res models.DomainReport

	op := "report_" + kind
	hit, err := s.cache.Get(ctx, reportKey(kind, level, s.analyzer.Len()), &res)
	if err != nil {
		s.logger.Warn().Err(err).Str("op", op).Msg("cache get failed")
	}
	if hit && err == nil {
		metrics.IncHit(op)
		res.Cached = true
		return res, nil
	}
	metrics.IncMiss(op)

	start := time.Now()
	visits, held, err := compute()
	metrics.ObserveAggregation(kind, level, start)
	if err != nil {
		return models.DomainReport{}, err
	}

	res = buildReport(kind, level, visits, held, s.now().UTC())
	if err := s.cache.Set(ctx, reportKey(kind, level, held), res, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("op", op).Msg("cache set failed")
	}
	return res, nil
}

func reportKey(kind string, level, records int) string {
	return fmt.Sprintf("visits:%s:%d:%d", kind, level, records)
}

// buildReport sorts buckets by visits desc, then domain asc.
func buildReport(kind string, level int, visits map[string]int, held int, ts time.Time) models.DomainReport {
	list := make([]models.DomainCount, 0, len(visits))
	total := 0
	for d, v := range visits {
		list = append(list, models.DomainCount{Domain: d, Visits: v})
		total += v
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Visits != list[j].Visits {
			return list[i].Visits > list[j].Visits
		}
		return list[i].Domain < list[j].Domain
	})
	return models.DomainReport{
		Kind:        kind,
		Level:       level,
		HasData:     held > 0,
		Records:     held,
		TotalVisits: total,
		Domains:     list,
		Timestamp:   ts,
	}
}
