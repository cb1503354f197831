package analysis

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/avivbaron/uri-analyzer/internal/cache"
	"github.com/avivbaron/uri-analyzer/internal/metrics"
	"github.com/avivbaron/uri-analyzer/internal/models"
)

func newTestService(t *testing.T) (*Service, *bytes.Buffer) {
	t.Helper()
	mc := cache.NewMemory(cache.MemoryOptions{TTL: time.Minute})
	t.Cleanup(mc.Close)
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	return NewService(NewAnalyzer(), mc, time.Minute, logger), &buf
}

// TestService_DomainReport_CachesUntilDataChanges verifies that a report is
// served from cache until new records arrive.
// PASS: second call cached; after ingest a fresh, uncached report with new totals.
// FAIL: stale data served or cache never hit.
func TestService_DomainReport_CachesUntilDataChanges(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Ingest(ctx, []string{"100 example.com", "50 www.example.com", "bad entry"}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	r1, err := svc.DomainReport(ctx, 2)
	if err != nil {
		t.Fatalf("report1: %v", err)
	}
	if r1.Cached || !r1.HasData || r1.TotalVisits != 150 || r1.Records != 2 {
		t.Fatalf("report1=%+v", r1)
	}
	r2, err := svc.DomainReport(ctx, 2)
	if err != nil || !r2.Cached {
		t.Fatalf("report2 cached=%v err=%v", r2.Cached, err)
	}

	_, _ = svc.Ingest(ctx, []string{"25 example.org"})
	r3, err := svc.DomainReport(ctx, 2)
	if err != nil {
		t.Fatalf("report3: %v", err)
	}
	if r3.Cached || r3.TotalVisits != 175 || len(r3.Domains) != 2 {
		t.Fatalf("report3=%+v", r3)
	}
}

// TestService_DomainReport_Sorted orders buckets by visits desc, then name.
// PASS: expected order for the demo batch at level 2.
// FAIL: any other order.
func TestService_DomainReport_Sorted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, _ = svc.Ingest(ctx, append(sampleLines, "253 a-first.com"))

	r, err := svc.DomainReport(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.DomainCount{
		{Domain: "hommits.by", Visits: 1086},
		{Domain: "a-first.com", Visits: 253},
		{Domain: "hommits.com", Visits: 253},
		{Domain: "hom-mits.by", Visits: 234},
		{Domain: "hom-mits22.by", Visits: 111},
	}
	if len(r.Domains) != len(want) {
		t.Fatalf("domains=%v", r.Domains)
	}
	for i := range want {
		if r.Domains[i] != want[i] {
			t.Fatalf("domains[%d]=%v want %v", i, r.Domains[i], want[i])
		}
	}
}

// TestService_NoData reports HasData=false for a fresh analyzer.
// PASS: HasData false with no buckets, for both level and site reports.
// FAIL: HasData true or error.
func TestService_NoData(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	r, err := svc.DomainReport(ctx, 2)
	if err != nil || r.HasData || len(r.Domains) != 0 {
		t.Fatalf("r=%+v err=%v", r, err)
	}
	s, err := svc.SiteReport(ctx)
	if err != nil || s.HasData || s.Kind != KindSite {
		t.Fatalf("s=%+v err=%v", s, err)
	}
}

// TestService_Errors propagates contract violations.
// PASS: ErrNilInput for nil lines, ErrLevelOutOfRange for level 0.
// FAIL: errors swallowed.
func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.Ingest(ctx, nil); !errors.Is(err, ErrNilInput) {
		t.Fatalf("err=%v", err)
	}
	if _, err := svc.DomainReport(ctx, 0); !errors.Is(err, ErrLevelOutOfRange) {
		t.Fatalf("err=%v", err)
	}
}

// TestService_Ingest_Logs writes a summary line and one debug line per rejection.
// PASS: log contains the batch summary and the rejected line.
// FAIL: missing entries.
func TestService_Ingest_Logs(t *testing.T) {
	svc, buf := newTestService(t)
	_, _ = svc.Ingest(context.Background(), []string{"1 a.com", "bad entry"})
	out := buf.String()
	if !strings.Contains(out, `"message":"batch ingested"`) || !strings.Contains(out, `"line":"bad entry"`) {
		t.Fatalf("log output: %s", out)
	}
}

// TestService_Ingest_RejectedLineCountedOnce feeds a line that fails both rules.
// PASS: one rejected line, one sample per reason, one accepted line.
// FAIL: the line is counted once per reason.
func TestService_Ingest_RejectedLineCountedOnce(t *testing.T) {
	m := metrics.Init(true)
	defer metrics.Init(false)
	svc, _ := newTestService(t)

	if _, err := svc.Ingest(context.Background(), []string{"bad entry", "1 example.com"}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := testutil.ToFloat64(m.LinesRejected); got != 1 {
		t.Fatalf("rejected lines=%v want 1", got)
	}
	for _, reason := range []string{ReasonBadVisits, ReasonBadURI} {
		if got := testutil.ToFloat64(m.RejectionReasons.WithLabelValues(reason)); got != 1 {
			t.Fatalf("%s=%v want 1", reason, got)
		}
	}
	if got := testutil.ToFloat64(m.LinesAccepted); got != 1 {
		t.Fatalf("accepted=%v want 1", got)
	}
}
