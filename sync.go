package catalogsync

import (
	"context"
	"sync"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
	"github.com/dialoggauge/catalogsync/pkg/errors"
	"github.com/dialoggauge/catalogsync/pkg/ledger"
	"github.com/dialoggauge/catalogsync/pkg/logging"
	"github.com/dialoggauge/catalogsync/pkg/reconciler"
)

// Sync reconciles every collection in the job and rewrites dependent
// references once the mappings they need are final.
func (e *engine) Sync(ctx context.Context, job *Job) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if job == nil {
		return nil, &errors.ValidationError{Field: "job", Message: "cannot be nil"}
	}

	// Step 1: start the run ledger and tag the context so every
	// collection pass logs the run id.
	run := ledger.NewRun(ledger.WithClock(e.config.clock))
	ctx = logging.WithLogger(ctx, e.config.logger)
	ctx = logging.WithRunID(ctx, run.ID())
	logger := logging.FromContext(ctx)

	logger.Info().
		Int("collections", len(job.Collections)).
		Int("dependents", len(job.Dependents)).
		Msg("Reconciliation run started")

	result := &Result{
		Collections: make(map[catalogs.Type]*reconciler.Result, len(job.Collections)),
	}

	// Step 2: process entries in dependency layers. A collection that
	// references another reconciled collection waits for its mapping;
	// everything else in a layer is independent and may run in parallel.
	pending := make([]Entry, 0, len(job.Collections))
	for _, entry := range job.Collections {
		if entry.Local == nil {
			entityType := "unknown"
			if entry.Canonical != nil {
				entityType = entry.Canonical.Type.String()
			}
			run.RecordFailure(entityType, &errors.ValidationError{
				Field:   "local",
				Message: "collection is nil",
			})
			continue
		}
		pending = append(pending, entry)
	}
	completed := make(map[catalogs.Type]bool)

	for len(pending) > 0 {
		layer, rest := e.nextLayer(pending, completed)
		if len(layer) == 0 {
			// Reference cycle inside the job. Process the remainder
			// without the unavailable mappings rather than deadlock.
			logger.Warn().Msg("Reference cycle between job collections; proceeding without ordering")
			layer, rest = rest, nil
		}
		pending = rest

		e.processLayer(ctx, layer, run, result)

		for _, entry := range layer {
			completed[entry.Local.Type] = true
		}
	}

	// Step 3: rewrite the dependent-only collections, in place, with
	// every finalized mapping. This always runs to completion over
	// every record before the run is finalized.
	for _, dep := range job.Dependents {
		e.rewriteDependent(dep, result)
	}

	// Step 4: finalize the report.
	result.Report = run.Finalize()

	logger.Info().
		Str("status", string(result.Report.Status)).
		Int("created", result.Report.TotalCreated).
		Int("updated", result.Report.TotalUpdated).
		Int("archived", result.Report.TotalArchived).
		Int("errors", result.Report.TotalErrors).
		Msg("Reconciliation run finished")

	return result, nil
}

// nextLayer splits pending entries into those whose in-job references are
// all settled and those still waiting.
func (e *engine) nextLayer(pending []Entry, completed map[catalogs.Type]bool) (layer, rest []Entry) {
	inJob := make(map[catalogs.Type]bool, len(pending))
	for _, entry := range pending {
		inJob[entry.Local.Type] = true
	}

	for _, entry := range pending {
		ready := true
		for _, ref := range e.config.references[entry.Local.Type] {
			if inJob[ref.To] && !completed[ref.To] {
				ready = false
				break
			}
		}
		if ready {
			layer = append(layer, entry)
		} else {
			rest = append(rest, entry)
		}
	}
	return layer, rest
}

// processLayer reconciles one layer of independent entries, in parallel
// when the engine is configured for it. Mappings from earlier layers are
// snapshotted up front so goroutines never read shared state.
func (e *engine) processLayer(ctx context.Context, layer []Entry, run *ledger.Run, result *Result) {
	mappings := make(map[catalogs.Type]reconciler.IdentityMapping, len(result.Collections))
	for t, res := range result.Collections {
		mappings[t] = res.Mapping
	}

	if !e.config.concurrent || len(layer) == 1 {
		for _, entry := range layer {
			res, outcome, err := e.reconcileEntry(ctx, entry, mappings)
			e.commitEntry(entry, res, outcome, err, run, result)
		}
		return
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, entry := range layer {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, outcome, err := e.reconcileEntry(ctx, entry, mappings)
			mu.Lock()
			defer mu.Unlock()
			e.commitEntry(entry, res, outcome, err, run, result)
		}()
	}
	wg.Wait()
}

// reconcileEntry runs the per-collection pass: rewrite the entry's own
// foreign keys with any finalized mappings, then reconcile.
func (e *engine) reconcileEntry(ctx context.Context, entry Entry, mappings map[catalogs.Type]reconciler.IdentityMapping) (*reconciler.Result, ledger.Outcome, error) {
	local := entry.Local.Clone()

	// Apply finalized mappings to this entry's foreign keys before
	// matching. The strict ordering dependency is guaranteed by the
	// layering in Sync.
	var rewriteWarnings []string
	for _, ref := range e.config.references[local.Type] {
		mapping := mappings[ref.To]
		if mapping == nil {
			continue
		}
		for _, w := range reconciler.RewriteReferences(local, []string{ref.Field}, mapping) {
			rewriteWarnings = append(rewriteWarnings, w.String())
		}
	}

	r, err := reconciler.New(reconciler.WithClock(e.config.clock))
	if err != nil {
		return nil, ledger.Outcome{}, err
	}

	res, err := r.Reconcile(ctx, local, entry.Canonical)
	if err != nil {
		return nil, ledger.Outcome{}, err
	}

	if e.config.sortByID {
		reconciler.SortByID(res.Collection)
	}
	if e.config.renumber {
		reconciler.RenumberSortOrder(res.Collection)
	}

	outcome := ledger.Outcome{
		Created:  res.Created,
		Updated:  res.Updated,
		Archived: res.Archived,
		Notes:    res.Notes,
		Warnings: rewriteWarnings,
	}
	for _, issue := range res.Errors {
		outcome.Errors = append(outcome.Errors, ledger.Issue{
			DisplayName: issue.DisplayName,
			Reason:      issue.Reason,
		})
	}
	return res, outcome, nil
}

// commitEntry stores a reconciled entry's result, or records the step as
// failed. Other collections in the run proceed either way.
func (e *engine) commitEntry(entry Entry, res *reconciler.Result, outcome ledger.Outcome, err error, run *ledger.Run, result *Result) {
	entityType := entry.Local.Type
	if err != nil {
		e.config.logger.Error().
			Err(err).
			Str("collection", entityType.String()).
			Msg("Collection step failed")
		run.RecordFailure(entityType.String(), err)
		return
	}
	result.Collections[entityType] = res
	result.Warnings = append(result.Warnings, outcome.Warnings...)
	run.Record(entityType.String(), outcome)
}

// rewriteDependent applies every finalized mapping to a dependent-only
// collection, mutating it in place.
func (e *engine) rewriteDependent(dep *catalogs.Collection, result *Result) {
	if dep == nil {
		return
	}
	for _, ref := range e.config.references[dep.Type] {
		mapping := result.Mapping(ref.To)
		if mapping == nil {
			continue
		}
		for _, w := range reconciler.RewriteReferences(dep, []string{ref.Field}, mapping) {
			e.config.logger.Warn().
				Str("collection", dep.Type.String()).
				Str("field", w.Field).
				Int("ref", w.Ref).
				Msg("Reference to unknown entity left unrewritten")
			result.Warnings = append(result.Warnings, w.String())
		}
	}
}
