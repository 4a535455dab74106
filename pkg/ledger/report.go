package ledger

import (
	"time"
)

// Report is the finalized, immutable record of one reconciliation run.
type Report struct {
	RunID      string             `json:"run_id"`
	Status     Status             `json:"status"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Duration   time.Duration      `json:"duration"`
	PerType    map[string]Outcome `json:"per_type"`
	TypeOrder  []string           `json:"-"`

	// Totals, denormalized for quick display. Failed types contribute
	// only to TotalErrors.
	TotalCreated  int `json:"total_created"`
	TotalUpdated  int `json:"total_updated"`
	TotalArchived int `json:"total_archived"`
	TotalErrors   int `json:"total_errors"`
}

// TotalProcessed returns the number of records created or updated.
func (r *Report) TotalProcessed() int {
	return r.TotalCreated + r.TotalUpdated
}

// HasErrors reports whether any record or type errored.
func (r *Report) HasErrors() bool {
	return r.TotalErrors > 0
}
