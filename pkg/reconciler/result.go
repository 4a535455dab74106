package reconciler

import (
	"time"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
)

// RecordIssue ties a skipped record to the reason it was excluded.
type RecordIssue struct {
	DisplayName string `json:"display_name"`
	Reason      string `json:"reason"`
	Err         error  `json:"-"`
}

// Result is the outcome of reconciling one collection.
type Result struct {
	// Collection holds the reconciled records in input order, every
	// identifier final and pairwise distinct.
	Collection *catalogs.Collection

	// Mapping is the old-to-final identity mapping, exposed so the
	// caller can rewrite dependent collections the engine does not know
	// about, or persist the remap for audit.
	Mapping IdentityMapping

	// Reassignments are the conflict resolver's audit entries.
	Reassignments []Reassignment

	// Decisions is the per-record merge audit trail.
	Decisions []RecordDecisions

	// Notes records non-fatal observations, such as ambiguous canonical
	// names resolved by the last-wins tie-break.
	Notes []string

	// Errors lists records skipped as malformed.
	Errors []RecordIssue

	// Counters.
	Matched  int
	Created  int
	Updated  int
	Archived int

	// Timing.
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// newResult creates an empty result for a collection type.
func newResult(t catalogs.Type, start time.Time) *Result {
	return &Result{
		Collection: &catalogs.Collection{Type: t},
		Mapping:    make(IdentityMapping),
		StartTime:  start,
	}
}

// finish stamps the end time.
func (r *Result) finish(end time.Time) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)
}

// recordIssue registers a skipped record.
func (r *Result) recordIssue(rec catalogs.Record, err error) {
	name := ""
	if rec != nil {
		name = rec.DisplayName()
	}
	r.Errors = append(r.Errors, RecordIssue{
		DisplayName: name,
		Reason:      err.Error(),
		Err:         err,
	})
}

// HasErrors reports whether any record was skipped.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}
