package reconciler

import (
	"time"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
)

// Actor identifies this engine in audit entries, distinguishing its
// writes from manual edits.
const Actor = "system:catalog_sync"

// AuditChange is one field's old and new value.
type AuditChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditEntry is the audit-log form of one record's merge: only the
// fields whose values actually changed, keyed by field name.
type AuditEntry struct {
	EntityType  string                 `json:"entity_type"`
	EntityID    int                    `json:"entity_id"`
	DisplayName string                 `json:"display_name"`
	Actor       string                 `json:"actor"`
	At          time.Time              `json:"at"`
	Changes     map[string]AuditChange `json:"changes"`
}

// AuditEntries converts a result's merge decisions into audit entries.
// Records whose merge adopted nothing are omitted; kept-local and
// unchanged fields are not changes.
func (r *Result) AuditEntries() []AuditEntry {
	return auditEntries(r.Collection.Type, r.Decisions, r.EndTime)
}

func auditEntries(t catalogs.Type, decisions []RecordDecisions, at time.Time) []AuditEntry {
	var entries []AuditEntry
	for _, rd := range decisions {
		changes := make(map[string]AuditChange)
		for _, d := range rd.Decisions {
			if d.Kind != AdoptedCanonical {
				continue
			}
			changes[d.Field] = AuditChange{Old: d.Local, New: d.Canonical}
		}
		if len(changes) == 0 {
			continue
		}
		entries = append(entries, AuditEntry{
			EntityType:  t.String(),
			EntityID:    rd.RecordID,
			DisplayName: rd.DisplayName,
			Actor:       Actor,
			At:          at,
			Changes:     changes,
		})
	}
	return entries
}
