package analysis

import (
	"fmt"
	"strings"
)

// Record is one accepted "<visits> <uri>" line after decomposition.
type Record struct {
	Scheme string `json:"scheme,omitempty"` // "", "http://" or "https://"
	HasWWW bool   `json:"has_www"`
	Host   string `json:"host"` // lowercased remainder, may still carry :port and /path
	Visits int    `json:"visits"`

	wwwPrefix string // the "www." actually stripped from Host, lowercased
}

func (r Record) HasScheme() bool { return r.Scheme != "" }

// URI rebuilds the lowercased URI the record was parsed from.
func (r Record) URI() string {
	var b strings.Builder
	b.Grow(len(r.Scheme) + len(r.wwwPrefix) + len(r.Host))
	b.WriteString(r.Scheme)
	b.WriteString(r.wwwPrefix)
	b.WriteString(r.Host)
	return b.String()
}

// Validation failure reasons, in the order they are reported.
const (
	ReasonBadVisits = "wrong number of visits"
	ReasonBadURI    = "wrong URI"
)

// ValidationError describes one rejected input line.
type ValidationError struct {
	Line    string   `json:"line"`
	Reasons []string `json:"reasons"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid line %q: %s", e.Line, strings.Join(e.Reasons, ", "))
}

// IngestResult summarizes one AddData call.
type IngestResult struct {
	// Accepted is the number of records the analyzer holds after the call,
	// including records from earlier batches.
	Accepted int               `json:"accepted"`
	Added    int               `json:"added"`
	Errors   []ValidationError `json:"errors"`
}

func (r IngestResult) HasErrors() bool   { return len(r.Errors) > 0 }
func (r IngestResult) HasAccepted() bool { return r.Accepted > 0 }
