package models

import "time"

// DomainCount is one aggregation bucket.
type DomainCount struct {
	Domain string `json:"domain"`
	Visits int    `json:"visits"`
}

// DomainReport is the sorted, cacheable form of an aggregation.
// Level is 0 for site (eTLD+1) reports.
type DomainReport struct {
	Kind        string        `json:"kind"` // "level" or "site"
	Level       int           `json:"level,omitempty"`
	HasData     bool          `json:"has_data"`
	Records     int           `json:"records"`
	TotalVisits int           `json:"total_visits"`
	Domains     []DomainCount `json:"domains"`
	Cached      bool          `json:"cached"`
	Timestamp   time.Time     `json:"timestamp"`
}

// IngestRequest is the JSON body of POST /api/visits.
// A missing or null "lines" field is rejected.
type IngestRequest struct {
	Lines []string `json:"lines"`
}
