// Package catalogsync reconciles locally curated catalog collections with
// the canonical collections of an external system. It guarantees stable,
// globally unique identifiers across repeated runs, protects manually
// edited fields from being overwritten, and keeps foreign-key references
// consistent whenever identifiers are remapped.
//
// The engine consumes collections; fetching canonical data, parsing raw
// exports, and persisting results are the caller's responsibility.
package catalogsync

import (
	"context"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
	"github.com/dialoggauge/catalogsync/pkg/ledger"
	"github.com/dialoggauge/catalogsync/pkg/reconciler"
)

// Engine runs reconciliation across one or more entity-type collections.
type Engine interface {
	// Sync reconciles every collection in the job, rewrites dependent
	// references, and returns the run's result with its finalized
	// report. A single collection's failure never aborts the run;
	// it surfaces in the report as a failed type.
	Sync(ctx context.Context, job *Job) (*Result, error)
}

// Job describes one reconciliation run.
type Job struct {
	// Collections are the entity types to reconcile, each pairing a
	// local collection with its canonical counterpart. Input order is
	// kept except where the reference table forces a dependency order.
	Collections []Entry

	// Dependents are collections that are not reconciled themselves but
	// carry references into reconciled collections (link tables, for
	// example). They are rewritten in place after every referenced
	// collection's mapping is final.
	Dependents []*catalogs.Collection
}

// Entry pairs a local collection with its canonical counterpart.
type Entry struct {
	Local     *catalogs.Collection
	Canonical *catalogs.Collection
}

// Result is the outcome of one engine run.
type Result struct {
	// Report is the finalized run report.
	Report *ledger.Report

	// Collections holds each reconciled type's full result, including
	// the reconciled records, the identity mapping (for callers that
	// need to rewrite collections the engine never saw), and the merge
	// audit trail.
	Collections map[catalogs.Type]*reconciler.Result

	// Warnings lists references that pointed at identifiers unknown on
	// both sides of a remap.
	Warnings []string
}

// Mapping returns a reconciled type's identity mapping, or nil when the
// type was not part of the run or its step failed.
func (r *Result) Mapping(t catalogs.Type) reconciler.IdentityMapping {
	if res, ok := r.Collections[t]; ok {
		return res.Mapping
	}
	return nil
}

// engine is the default Engine implementation.
type engine struct {
	config *config
}

// New creates a new Engine with the given options.
func New(opts ...Option) (Engine, error) {
	config, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &engine{config: config}, nil
}
