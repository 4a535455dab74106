package reconciler

import (
	"reflect"
	"slices"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
)

// DecisionKind classifies the per-field outcome of an override-aware merge.
type DecisionKind string

const (
	// KeptLocal means the field is protected and the local value stands.
	KeptLocal DecisionKind = "kept_local"
	// AdoptedCanonical means the canonical value replaced the local one.
	AdoptedCanonical DecisionKind = "adopted_canonical"
	// Unchanged means local and canonical values were already equal.
	Unchanged DecisionKind = "unchanged"
)

// MergeDecision records what happened to one field of a matched pair.
// Decisions are the authoritative audit trail for what changed and why;
// they are never silently dropped.
type MergeDecision struct {
	Field     string       `json:"field"`
	Kind      DecisionKind `json:"kind"`
	Local     any          `json:"local,omitempty"`
	Canonical any          `json:"canonical,omitempty"`
}

// RecordDecisions groups the merge decisions of one reconciled record.
type RecordDecisions struct {
	RecordID    int             `json:"record_id"`
	DisplayName string          `json:"display_name"`
	Decisions   []MergeDecision `json:"decisions,omitempty"`
}

// mergeRecords merges a matched pair field by field. Fields in the local
// record's protected set keep their local value; every other canonical
// field is adopted when it differs. Fields the canonical record does not
// carry are left untouched regardless of protection, and the merge never
// deletes a local field or alters the protected set itself.
//
// Decisions are emitted in sorted field order so the audit trail is
// stable across runs.
func mergeRecords(local, canonical catalogs.Record) (catalogs.Record, []MergeDecision) {
	merged := local.Clone()

	fields := make([]string, 0, len(canonical))
	for field := range canonical {
		// Identifiers are assigned by the matcher, and protection
		// status only changes by explicit instruction, never by sync.
		if field == catalogs.FieldID || field == catalogs.FieldProtected {
			continue
		}
		fields = append(fields, field)
	}
	slices.Sort(fields)

	decisions := make([]MergeDecision, 0, len(fields))
	for _, field := range fields {
		canonicalValue := canonical[field]
		localValue := merged[field]

		switch {
		case local.IsProtected(field):
			decisions = append(decisions, MergeDecision{
				Field:     field,
				Kind:      KeptLocal,
				Local:     localValue,
				Canonical: canonicalValue,
			})
		case !reflect.DeepEqual(localValue, canonicalValue):
			merged[field] = canonicalValue
			decisions = append(decisions, MergeDecision{
				Field:     field,
				Kind:      AdoptedCanonical,
				Local:     localValue,
				Canonical: canonicalValue,
			})
		default:
			decisions = append(decisions, MergeDecision{
				Field: field,
				Kind:  Unchanged,
				Local: localValue,
			})
		}
	}

	return merged, decisions
}
