package reconciler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
)

func TestAuditEntriesOnlyAdoptedChanges(t *testing.T) {
	end := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	result := &Result{
		Collection: &catalogs.Collection{Type: catalogs.Categories},
		Decisions: []RecordDecisions{
			{
				RecordID:    12,
				DisplayName: "Skin Care",
				Decisions: []MergeDecision{
					{Field: "description", Kind: AdoptedCanonical, Local: "old", Canonical: "new"},
					{Field: "name", Kind: Unchanged, Local: "Skin Care"},
					{Field: "price", Kind: KeptLocal, Local: 10, Canonical: 12},
				},
			},
			{
				RecordID:    13,
				DisplayName: "Body Care",
				Decisions: []MergeDecision{
					{Field: "name", Kind: Unchanged, Local: "Body Care"},
				},
			},
		},
		EndTime: end,
	}

	entries := result.AuditEntries()
	require.Len(t, entries, 1, "records without adopted fields produce no entry")

	entry := entries[0]
	assert.Equal(t, "categories", entry.EntityType)
	assert.Equal(t, 12, entry.EntityID)
	assert.Equal(t, "Skin Care", entry.DisplayName)
	assert.Equal(t, Actor, entry.Actor)
	assert.Equal(t, end, entry.At)

	require.Contains(t, entry.Changes, "description")
	assert.Equal(t, AuditChange{Old: "old", New: "new"}, entry.Changes["description"])
	assert.NotContains(t, entry.Changes, "name")
	assert.NotContains(t, entry.Changes, "price", "protected fields never appear as changes")
}

func TestAuditEntriesEmptyResult(t *testing.T) {
	result := &Result{Collection: &catalogs.Collection{Type: catalogs.Services}}
	assert.Empty(t, result.AuditEntries())
}
