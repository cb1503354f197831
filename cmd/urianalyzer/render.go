package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/avivbaron/uri-analyzer/internal/analysis"
	"github.com/avivbaron/uri-analyzer/internal/models"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

type errBadFormat string

func (e errBadFormat) Error() string {
	return fmt.Sprintf("unknown format %q (want %s or %s)", string(e), formatTable, formatJSON)
}

type output struct {
	Ingest analysis.IngestResult `json:"ingest"`
	Report models.DomainReport   `json:"report"`
}

func render(w io.Writer, format string, res analysis.IngestResult, rep models.DomainReport) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(output{Ingest: res, Report: rep})
	}

	fmt.Fprintf(w, "accepted %d, rejected %d\n", res.Added, len(res.Errors))
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %q: %s\n", e.Line, strings.Join(e.Reasons, ", "))
	}
	fmt.Fprintln(w)

	if !rep.HasData {
		fmt.Fprintln(w, "no data")
		return nil
	}
	title := "DOMAIN"
	if rep.Kind == analysis.KindLevel {
		title = fmt.Sprintf("DOMAIN (level %d)", rep.Level)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tVISITS\n", title)
	for _, d := range rep.Domains {
		fmt.Fprintf(tw, "%s\t%d\n", d.Domain, d.Visits)
	}
	fmt.Fprintf(tw, "total\t%d\n", rep.TotalVisits)
	return tw.Flush()
}
