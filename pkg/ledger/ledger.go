// Package ledger tracks the outcome of a reconciliation run across entity
// types. It is the only component that observes results across types:
// each type's processing is independent, the ledger just accumulates what
// happened and derives the run's terminal status.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the run's lifecycle state.
type Status string

// Run statuses. A run starts in_progress and finalizes into exactly one
// terminal state.
const (
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusPartial    Status = "partial"
	StatusFailed     Status = "failed"
)

// Issue ties a record to the reason it was excluded from a collection's
// reconciliation.
type Issue struct {
	DisplayName string `json:"display_name"`
	Reason      string `json:"reason"`
}

// Outcome is one entity type's processing result.
type Outcome struct {
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Archived int      `json:"archived"`
	Errors   []Issue  `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Notes    []string `json:"notes,omitempty"`

	// Failed marks a fatal step failure: the whole collection's
	// identifier assignment was abandoned. A failed type contributes
	// nothing to the other counters.
	Failed        bool   `json:"failed,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Run accumulates per-type outcomes for one reconciliation run. Safe for
// concurrent use: independent entity types may record from separate
// goroutines.
type Run struct {
	mu        sync.Mutex
	id        string
	startedAt time.Time
	clock     func() time.Time
	order     []string
	outcomes  map[string]Outcome
	finalized bool
}

// RunOption configures a Run.
type RunOption func(*Run)

// WithClock sets the time source, for deterministic timestamps in tests.
func WithClock(clock func() time.Time) RunOption {
	return func(r *Run) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewRun starts a run in the in_progress state.
func NewRun(opts ...RunOption) *Run {
	r := &Run{
		id:       uuid.NewString(),
		clock:    time.Now,
		outcomes: make(map[string]Outcome),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.startedAt = r.clock()
	return r
}

// ID returns the run's identifier.
func (r *Run) ID() string {
	return r.id
}

// Record stores one entity type's outcome. Recording the same type twice
// overwrites the earlier outcome; the first recording fixes its position
// in the report's type order.
func (r *Run) Record(entityType string, outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}
	if _, seen := r.outcomes[entityType]; !seen {
		r.order = append(r.order, entityType)
	}
	r.outcomes[entityType] = outcome
}

// RecordFailure marks an entity type's step as fatally failed. The type
// contributes only to the errors side of the report; other types proceed
// independently.
func (r *Run) RecordFailure(entityType string, err error) {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	r.Record(entityType, Outcome{Failed: true, FailureReason: reason})
}

// Finalize closes the run and returns the immutable report. The terminal
// status is failed when every entity type fatally failed, success when no
// type failed and no record errored, and partial otherwise. Further
// recordings are ignored.
func (r *Run) Finalize() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalized = true

	finished := r.clock()
	report := &Report{
		RunID:      r.id,
		StartedAt:  r.startedAt,
		FinishedAt: finished,
		Duration:   finished.Sub(r.startedAt),
		PerType:    make(map[string]Outcome, len(r.outcomes)),
		TypeOrder:  append([]string(nil), r.order...),
	}

	failures := 0
	recordErrors := 0
	for entityType, outcome := range r.outcomes {
		report.PerType[entityType] = outcome
		if outcome.Failed {
			failures++
			continue
		}
		recordErrors += len(outcome.Errors)
		report.TotalCreated += outcome.Created
		report.TotalUpdated += outcome.Updated
		report.TotalArchived += outcome.Archived
	}
	report.TotalErrors = recordErrors + failures

	switch {
	case len(r.outcomes) > 0 && failures == len(r.outcomes):
		report.Status = StatusFailed
	case failures == 0 && recordErrors == 0:
		report.Status = StatusSuccess
	default:
		report.Status = StatusPartial
	}

	return report
}
