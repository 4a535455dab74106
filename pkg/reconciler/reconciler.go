// Package reconciler merges locally curated catalog collections with
// canonical collections from the external system. It repairs duplicate
// identifiers, matches records by normalized name, adopts canonical
// identifiers and values where manual edits have not claimed a field, and
// rewrites foreign-key references whenever identifiers move.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
	"github.com/dialoggauge/catalogsync/pkg/errors"
	"github.com/dialoggauge/catalogsync/pkg/idalloc"
	"github.com/dialoggauge/catalogsync/pkg/logging"
)

// Reconciler reconciles one local collection against its canonical
// counterpart. Instances are stateless across invocations; all
// intermediate state is local to one Reconcile call.
type Reconciler interface {
	// Reconcile runs the full pass for one collection: conflict
	// resolution, matching, merging. The returned result carries the
	// reconciled collection, the identity mapping for dependent
	// rewrites, and the complete audit trail.
	Reconcile(ctx context.Context, local, canonical *catalogs.Collection) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	opts *options
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{opts: options}, nil
}

// Reconcile performs the single pass over one collection.
func (r *reconciler) Reconcile(ctx context.Context, local, canonical *catalogs.Collection) (*Result, error) {
	if local == nil {
		return nil, &errors.ValidationError{Field: "local", Message: "cannot be nil"}
	}

	logger := logging.FromContext(ctx).With().
		Str("collection", local.Type.String()).
		Logger()

	result := newResult(local.Type, r.opts.now())

	// Step 1: validate record shapes; malformed records are skipped and
	// reported, the rest of the collection proceeds.
	working := r.screen(local, result)

	// Remember each record's identifier as the caller supplied it. The
	// exposed mapping is keyed by these; identifiers the resolver mints
	// are interim repair state the caller has never seen.
	origIDs := make([]originalID, working.Len())
	for i, rec := range working.Records {
		origIDs[i].id, origIDs[i].ok = rec.ID()
	}

	// Step 2: repair duplicate and missing identifiers so every local
	// identifier is unique before matching.
	if err := resolveConflicts(working, result); err != nil {
		return nil, errors.NewCollectionError(local.Type.String(), "resolve", err)
	}

	// Step 3: index canonical records by normalized name and match.
	index := buildCanonicalIndex(canonical, result)
	matches := matchRecords(working, index)

	// Step 4: assign final identifiers and merge matched pairs.
	// New identifiers start strictly above the highest canonical
	// identifier so they can never collide with canonical ones, even
	// those absent from this fetch.
	if err := r.apply(matches, canonical, origIDs, result); err != nil {
		return nil, errors.NewCollectionError(local.Type.String(), "merge", err)
	}

	result.finish(r.opts.now())

	logger.Info().
		Int("matched", result.Matched).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("archived", result.Archived).
		Int("errors", len(result.Errors)).
		Dur("duration", result.Duration).
		Msg("Collection reconciled")

	return result, nil
}

// screen filters out malformed records, reporting each one.
func (r *reconciler) screen(local *catalogs.Collection, result *Result) *catalogs.Collection {
	working := &catalogs.Collection{Type: local.Type, Records: make([]catalogs.Record, 0, local.Len())}
	for i, rec := range local.Records {
		if err := validateShape(rec); err != nil {
			result.recordIssue(rec, errors.NewMalformedRecordError(local.Type.String(), i, err.Error()))
			continue
		}
		working.Records = append(working.Records, rec.Clone())
	}
	return working
}

// validateShape checks the contractual field shapes. A record may lack an
// identifier or a name entirely, but a present field must have a usable
// shape.
func validateShape(rec catalogs.Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	if v, ok := rec[catalogs.FieldID]; ok && v != nil {
		if _, usable := rec.ID(); !usable {
			return errors.New("identifier is not an integer")
		}
	}
	if v, ok := rec[catalogs.FieldName]; ok && v != nil {
		if _, usable := v.(string); !usable {
			return errors.New("name is not a string")
		}
	}
	return nil
}

// originalID is a record's identifier as the caller supplied it, before
// conflict resolution.
type originalID struct {
	id int
	ok bool
}

// apply walks the match results in input order, allocating identifiers
// for new records and merging matched pairs. A canonical identifier is
// claimed at most once: when two local records match the same canonical
// record, the first in input order adopts its identifier and every later
// one proceeds as new, keeping final identifiers pairwise distinct.
func (r *reconciler) apply(matches []Match, canonical *catalogs.Collection, origIDs []originalID, result *Result) error {
	alloc := idalloc.New(canonical.MaxID()+1, canonical.IDs()...)
	claimed := make(map[int]bool, len(matches))

	for i, m := range matches {
		status := m.Status
		if status == Matched && claimed[m.CanonicalID] {
			status = MatchNew
		}

		var finalID int
		switch status {
		case Matched:
			claimed[m.CanonicalID] = true
			finalID = m.CanonicalID
		case MatchNew:
			id, err := alloc.Next()
			if err != nil {
				return err
			}
			finalID = id
			if m.Status == Matched {
				result.Notes = append(result.Notes, fmt.Sprintf(
					"duplicate local name %q: canonical id %d already claimed, allocated %d",
					m.Record.DisplayName(), m.CanonicalID, finalID))
			}
		}

		merged := m.Record
		var decisions []MergeDecision
		if status == Matched {
			merged, decisions = mergeRecords(m.Record, m.Canonical)
		}
		merged.SetID(finalID)

		// Within a duplicate-identifier group the keeper comes first, so
		// the first entry wins and a shared old identifier maps to the
		// keeper's final identifier.
		if orig := origIDs[i]; orig.ok {
			if _, taken := result.Mapping[orig.id]; !taken {
				result.Mapping[orig.id] = finalID
			}
		}
		result.Collection.Records = append(result.Collection.Records, merged)
		result.Decisions = append(result.Decisions, RecordDecisions{
			RecordID:    finalID,
			DisplayName: merged.DisplayName(),
			Decisions:   decisions,
		})

		switch {
		case status == MatchNew:
			result.Created++
		case m.Canonical.IsArchived() && merged.IsArchived():
			result.Archived++
			result.Matched++
		default:
			result.Updated++
			result.Matched++
		}
	}
	return nil
}

// now returns the configured clock's time.
func (o *options) now() time.Time {
	if o.clock != nil {
		return o.clock()
	}
	return time.Now()
}
