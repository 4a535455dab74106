package reconciler

import (
	"fmt"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
)

// IdentityMapping maps each old local identifier to its final identifier
// for one reconciled collection. Created fresh per run and discarded once
// applied to every dependent collection; it is never persisted on its own.
type IdentityMapping map[int]int

// NewIDs returns the set of final identifiers the mapping produces.
func (m IdentityMapping) NewIDs() map[int]struct{} {
	ids := make(map[int]struct{}, len(m))
	for _, newID := range m {
		ids[newID] = struct{}{}
	}
	return ids
}

// RewriteWarning flags a dependent reference that points at an identifier
// absent from both the old and new identifier spaces. The reference is
// left as-is: the entity may legitimately live outside this run's scope.
type RewriteWarning struct {
	Collection catalogs.Type `json:"collection"`
	Field      string        `json:"field"`
	Index      int           `json:"index"`
	Ref        int           `json:"ref"`
}

// String renders the warning for logs and reports.
func (w RewriteWarning) String() string {
	return fmt.Sprintf("%s[%d].%s references unknown id %d", w.Collection, w.Index, w.Field, w.Ref)
}

// RewriteReferences applies an identity mapping to every record of a
// dependent collection, for each of the given foreign-key fields. A
// reference that appears as a mapping key is replaced with the mapped
// value; references outside the key set are left untouched. The pass
// always runs to completion over every record; rewriting is never lazy
// or partial.
func RewriteReferences(dependent *catalogs.Collection, fields []string, mapping IdentityMapping) []RewriteWarning {
	if dependent == nil || len(fields) == 0 || len(mapping) == 0 {
		return nil
	}

	newIDs := mapping.NewIDs()

	var warnings []RewriteWarning
	for i, rec := range dependent.Records {
		for _, field := range fields {
			ref, ok := rec.Ref(field)
			if !ok {
				continue
			}

			if newID, remapped := mapping[ref]; remapped {
				rec[field] = newID
				continue
			}

			// Not a remapped identifier. References into the final
			// identifier space are fine; anything else is unknown on
			// both sides and worth flagging.
			if _, known := newIDs[ref]; !known {
				warnings = append(warnings, RewriteWarning{
					Collection: dependent.Type,
					Field:      field,
					Index:      i,
					Ref:        ref,
				})
			}
		}
	}
	return warnings
}
