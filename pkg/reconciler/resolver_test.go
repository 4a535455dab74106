package reconciler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
)

func newTestResult(t catalogs.Type) *Result {
	return newResult(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
}

func TestResolveConflictsKeepsFirstOccurrence(t *testing.T) {
	c := catalogs.NewCollection(catalogs.Categories,
		catalogs.Record{"id": 1, "name": "Skin Care"},
		catalogs.Record{"id": 1, "name": "Body Care"},
	)
	result := newTestResult(catalogs.Categories)

	require.NoError(t, resolveConflicts(c, result))

	id0, _ := c.Records[0].ID()
	id1, _ := c.Records[1].ID()
	assert.Equal(t, 1, id0, "first record keeps its identifier")
	assert.Equal(t, 2, id1, "duplicate receives next free identifier")

	require.Len(t, result.Reassignments, 1)
	entry := result.Reassignments[0]
	require.NotNil(t, entry.OldID)
	assert.Equal(t, 1, *entry.OldID)
	assert.Equal(t, 2, entry.NewID)
	assert.Equal(t, "Body Care", entry.DisplayName)
}

func TestResolveConflictsAssignsMissingIDs(t *testing.T) {
	c := catalogs.NewCollection(catalogs.Services,
		catalogs.Record{"id": 2, "name": "Massage"},
		catalogs.Record{"name": "Facial"},
		catalogs.Record{"id": nil, "name": "Waxing"},
	)
	result := newTestResult(catalogs.Services)

	require.NoError(t, resolveConflicts(c, result))

	var ids []int
	for _, rec := range c.Records {
		id, ok := rec.ID()
		require.True(t, ok, "every record has an identifier after resolution")
		ids = append(ids, id)
	}
	assert.Equal(t, []int{2, 1, 3}, ids)

	require.Len(t, result.Reassignments, 2)
	assert.Nil(t, result.Reassignments[0].OldID, "record without id has no old id in the audit entry")
}

func TestResolveConflictsUniqueness(t *testing.T) {
	c := catalogs.NewCollection(catalogs.Services,
		catalogs.Record{"id": 7, "name": "a"},
		catalogs.Record{"id": 7, "name": "b"},
		catalogs.Record{"id": 7, "name": "c"},
		catalogs.Record{"id": 1, "name": "d"},
		catalogs.Record{"name": "e"},
	)
	result := newTestResult(catalogs.Services)

	require.NoError(t, resolveConflicts(c, result))

	seen := make(map[int]bool)
	for _, rec := range c.Records {
		id, ok := rec.ID()
		require.True(t, ok)
		require.False(t, seen[id], "identifier %d assigned twice", id)
		seen[id] = true
	}
}

func TestResolveConflictsIsIdempotent(t *testing.T) {
	c := catalogs.NewCollection(catalogs.Categories,
		catalogs.Record{"id": 1, "name": "Skin Care"},
		catalogs.Record{"id": 1, "name": "Body Care"},
		catalogs.Record{"name": "Nails"},
	)
	first := newTestResult(catalogs.Categories)
	require.NoError(t, resolveConflicts(c, first))
	require.NotEmpty(t, first.Reassignments)

	before := make([]int, c.Len())
	for i, rec := range c.Records {
		before[i], _ = rec.ID()
	}

	second := newTestResult(catalogs.Categories)
	require.NoError(t, resolveConflicts(c, second))

	assert.Empty(t, second.Reassignments, "second pass finds zero conflicts")
	for i, rec := range c.Records {
		id, _ := rec.ID()
		assert.Equal(t, before[i], id, "no record changes identifier on the second pass")
	}
}
