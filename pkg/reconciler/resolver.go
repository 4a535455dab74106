package reconciler

import (
	"github.com/dialoggauge/catalogsync/pkg/catalogs"
	"github.com/dialoggauge/catalogsync/pkg/idalloc"
)

// Reassignment is the audit entry emitted for every identifier the
// conflict resolver moves or mints.
type Reassignment struct {
	OldID       *int   `json:"old_id"` // nil when the record had no identifier
	NewID       int    `json:"new_id"`
	DisplayName string `json:"display_name"`
}

// resolveConflicts repairs duplicate and missing identifiers in place.
// Within a duplicate group the first record in input order keeps its
// identifier; every other member, and every record without one, receives
// the next free identifier. Running it again on its own output finds zero
// conflicts, so the operation is idempotent.
func resolveConflicts(c *catalogs.Collection, result *Result) error {
	seen := make(map[int]struct{}, c.Len())
	var needID []int // indices into c.Records, in input order

	for i, rec := range c.Records {
		id, ok := rec.ID()
		if !ok {
			needID = append(needID, i)
			continue
		}
		if _, dup := seen[id]; dup {
			needID = append(needID, i)
			continue
		}
		seen[id] = struct{}{}
	}

	if len(needID) == 0 {
		return nil
	}

	// Seed with every identifier present, conflicting ones included, so a
	// freshly minted identifier can never collide with a kept one.
	alloc := idalloc.New(1, c.IDs()...)

	for _, i := range needID {
		rec := c.Records[i]
		newID, err := alloc.Next()
		if err != nil {
			return err
		}

		entry := Reassignment{NewID: newID, DisplayName: rec.DisplayName()}
		if old, had := rec.ID(); had {
			o := old
			entry.OldID = &o
		}
		result.Reassignments = append(result.Reassignments, entry)

		rec.SetID(newID)
	}
	return nil
}
