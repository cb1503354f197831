package analysis

import (
	"fmt"
	"sync"

	"github.com/avivbaron/uri-analyzer/internal/util"
)

// Analyzer accumulates accepted records across batches and aggregates their
// visits. Records are append-only for the lifetime of the Analyzer.
// It is safe for concurrent use.
type Analyzer struct {
	mu      sync.RWMutex
	records []Record
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// AddData validates and ingests a batch of raw lines. Invalid lines are
// reported in the result and never abort the batch. A nil batch is a
// caller error; an empty one is not.
func (a *Analyzer) AddData(lines []string) (IngestResult, error) {
	if lines == nil {
		return IngestResult{}, fmt.Errorf("add data: %w", ErrNilInput)
	}

	// Parse outside the lock so long batches don't stall readers.
	accepted := make([]Record, 0, len(lines))
	var errs []ValidationError
	for _, line := range lines {
		rec, verr := ParseLine(line)
		if verr != nil {
			errs = append(errs, *verr)
			continue
		}
		accepted = append(accepted, rec)
	}

	a.mu.Lock()
	a.records = append(a.records, accepted...)
	total := len(a.records)
	a.mu.Unlock()

	return IngestResult{Accepted: total, Added: len(accepted), Errors: errs}, nil
}

// Len returns the number of records held.
func (a *Analyzer) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

// Records returns a copy of the held records in ingestion order.
func (a *Analyzer) Records() []Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}

// VisitsByDomainLevel sums visits per trailing-level domain key.
// ok is false when the analyzer holds no records at all; a non-nil empty
// map means records exist but none matched the level.
func (a *Analyzer) VisitsByDomainLevel(level int) (visits map[string]int, ok bool, err error) {
	visits, held, err := a.levelVisits(level)
	return visits, held > 0, err
}

func (a *Analyzer) levelVisits(level int) (map[string]int, int, error) {
	re, err := DomainLevelPattern(level)
	if err != nil {
		return nil, 0, err
	}
	visits, held := a.aggregate(func(r Record) string {
		return re.FindString(r.Host)
	})
	return visits, held, nil
}

// VisitsBySite sums visits per registrable domain (eTLD+1). Hosts that have
// no registrable domain, such as a bare public suffix, are skipped.
func (a *Analyzer) VisitsBySite() (visits map[string]int, ok bool) {
	visits, held := a.siteVisits()
	return visits, held > 0
}

func (a *Analyzer) siteVisits() (map[string]int, int) {
	return a.aggregate(func(r Record) string {
		site, err := util.SiteOf(r.Host)
		if err != nil {
			return ""
		}
		return site
	})
}

// aggregate sums visits per non-empty key and reports how many records the
// sums were taken over. The map is nil when there are no records.
func (a *Analyzer) aggregate(keyOf func(Record) string) (map[string]int, int) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.records) == 0 {
		return nil, 0
	}
	out := make(map[string]int)
	for _, r := range a.records {
		key := keyOf(r)
		if key == "" {
			continue
		}
		out[key] += r.Visits
	}
	return out, len(a.records)
}
