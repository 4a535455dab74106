package reconciler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
)

func decisionFor(t *testing.T, decisions []MergeDecision, field string) MergeDecision {
	t.Helper()
	for _, d := range decisions {
		if d.Field == field {
			return d
		}
	}
	t.Fatalf("no decision recorded for field %q", field)
	return MergeDecision{}
}

func TestMergeProtectedFieldKeepsLocal(t *testing.T) {
	local := catalogs.Record{
		"id":               5,
		"name":             "Massage",
		"price_min":        100,
		"protected_fields": []string{"price_min"},
	}
	canonical := catalogs.Record{"id": 12, "name": "Massage", "price_min": 150}

	merged, decisions := mergeRecords(local, canonical)

	assert.Equal(t, 100, merged["price_min"], "protected field keeps the local value")
	d := decisionFor(t, decisions, "price_min")
	assert.Equal(t, KeptLocal, d.Kind)
	assert.Equal(t, 100, d.Local)
	assert.Equal(t, 150, d.Canonical)
}

func TestMergeAdoptsCanonicalWhenDifferent(t *testing.T) {
	local := catalogs.Record{"name": "Massage", "duration_minutes": 45}
	canonical := catalogs.Record{"name": "Massage", "duration_minutes": 60, "capacity": 2}

	merged, decisions := mergeRecords(local, canonical)

	assert.Equal(t, 60, merged["duration_minutes"])
	assert.Equal(t, 2, merged["capacity"], "fields only the canonical side carries are adopted")
	assert.Equal(t, AdoptedCanonical, decisionFor(t, decisions, "duration_minutes").Kind)
	assert.Equal(t, Unchanged, decisionFor(t, decisions, "name").Kind)
}

func TestMergeLeavesLocalOnlyFieldsAlone(t *testing.T) {
	local := catalogs.Record{"name": "Massage", "internal_note": "VIP room only"}
	canonical := catalogs.Record{"name": "Massage"}

	merged, decisions := mergeRecords(local, canonical)

	assert.Equal(t, "VIP room only", merged["internal_note"],
		"the canonical source is not authoritative for fields it does not carry")
	for _, d := range decisions {
		assert.NotEqual(t, "internal_note", d.Field)
	}
}

func TestMergeNeverTouchesProtectedSet(t *testing.T) {
	local := catalogs.Record{"name": "Massage", "protected_fields": []string{"name"}}
	canonical := catalogs.Record{"name": "massage", "protected_fields": []string{"name", "price_min"}}

	merged, _ := mergeRecords(local, canonical)

	assert.Equal(t, []string{"name"}, merged.ProtectedFields(),
		"protection status changes only by explicit instruction, never by merging")
	assert.Equal(t, "Massage", merged["name"])
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	local := catalogs.Record{"name": "Massage", "price_min": 100}
	canonical := catalogs.Record{"name": "Massage", "price_min": 120}

	merged, _ := mergeRecords(local, canonical)

	assert.Equal(t, 100, local["price_min"], "merge works on a clone")
	assert.Equal(t, 120, merged["price_min"])
}

func TestMergeDecisionOrderIsStable(t *testing.T) {
	local := catalogs.Record{"name": "A"}
	canonical := catalogs.Record{"name": "A", "b_field": 1, "a_field": 2, "c_field": 3}

	_, first := mergeRecords(local, canonical)
	_, second := mergeRecords(local, canonical)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("decision order differs between runs (-first +second):\n%s", diff)
	}

	var fields []string
	for _, d := range first {
		fields = append(fields, d.Field)
	}
	assert.Equal(t, []string{"a_field", "b_field", "c_field", "name"}, fields)
}

func TestMergeArchivedFlagPropagates(t *testing.T) {
	local := catalogs.Record{"name": "Old Treatment"}
	canonical := catalogs.Record{"name": "Old Treatment", "is_archived": true}

	merged, decisions := mergeRecords(local, canonical)

	require.True(t, merged.IsArchived())
	assert.Equal(t, AdoptedCanonical, decisionFor(t, decisions, "is_archived").Kind)
}
