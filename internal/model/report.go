package model

import "time"

// Report is the machine-readable audit of one run (validation_report.json)
type Report struct {
	RunID       string               `json:"runId"`
	GeneratedAt time.Time            `json:"generatedAt"`
	Directory   string               `json:"directory"`
	HasErrors   bool                 `json:"hasErrors"`
	FileCounts  map[string]FileCount `json:"fileCounts"`
	Skipped     []string             `json:"skipped,omitempty"`
	Errors      []ValidationError    `json:"errors"`
}

// FileStatus describes how far a file got through validation
type FileStatus string

const (
	StatusValidated FileStatus = "validated" // header accepted, rows partitioned
	StatusRejected  FileStatus = "rejected"  // file-fatal error, no output
	StatusSkipped   FileStatus = "skipped"   // optional file absent
)

// FileCount is the per-file row tally
type FileCount struct {
	Status   FileStatus `json:"status"`
	Variant  string     `json:"variant,omitempty"`
	Total    int        `json:"total"`
	Retained int        `json:"retained"`
	Removed  int        `json:"removed"`
}

// RemovedRow is a row excluded from the cleaned output, with its reasons
type RemovedRow struct {
	Line    int           `json:"line"`
	Fields  OrderedFields `json:"fields"`
	Reasons []string      `json:"reasons"`
}

// Result is everything a run produced. Nothing in it is mutated after the
// engine returns; writers only read it.
type Result struct {
	Errors   []ValidationError
	Retained map[string][]Row
	Removed  map[string][]RemovedRow

	// Headers holds the source header of every file that passed schema
	// validation, in processing order via Validated.
	Headers   map[string][]string
	Validated []string

	Report *Report

	// Artifact locations, set once written
	OutputDir   string
	ReportPath  string
	RemovedPath string
}

// HasErrors reports whether the run recorded any finding
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}
