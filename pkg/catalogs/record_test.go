package catalogs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   int
		ok     bool
	}{
		{name: "int", record: Record{"id": 5}, want: 5, ok: true},
		{name: "json float", record: Record{"id": float64(12)}, want: 12, ok: true},
		{name: "json number", record: Record{"id": json.Number("7")}, want: 7, ok: true},
		{name: "fractional float rejected", record: Record{"id": 1.5}, ok: false},
		{name: "null", record: Record{"id": nil}, ok: false},
		{name: "absent", record: Record{}, ok: false},
		{name: "string rejected", record: Record{"id": "5"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.record.ID()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{
			name:   "localized english preferred",
			record: Record{"name_i18n": map[string]any{"en": "Massage", "ru": "Массаж"}, "name": "fallback"},
			want:   "Massage",
		},
		{
			name:   "typed i18n map",
			record: Record{"name_i18n": map[string]string{"en": "Skin Care"}},
			want:   "Skin Care",
		},
		{
			name:   "plain name fallback",
			record: Record{"name_i18n": map[string]any{"ru": "Массаж"}, "name": "Massage"},
			want:   "Massage",
		},
		{name: "plain name only", record: Record{"name": "Body Care"}, want: "Body Care"},
		{name: "nothing", record: Record{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.DisplayName())
		})
	}
}

func TestProtectedFields(t *testing.T) {
	r := Record{"protected_fields": []any{"price_min", "name_i18n"}}
	assert.Equal(t, []string{"price_min", "name_i18n"}, r.ProtectedFields())
	assert.True(t, r.IsProtected("price_min"))
	assert.False(t, r.IsProtected("price_max"))

	typed := Record{"protected_fields": []string{"sort_order"}}
	assert.True(t, typed.IsProtected("sort_order"))

	assert.Nil(t, Record{}.ProtectedFields())
}

func TestCloneDoesNotAliasProtectedSet(t *testing.T) {
	r := Record{"id": 1, "protected_fields": []string{"price_min"}}
	clone := r.Clone()

	clone.SetID(9)
	clone["protected_fields"].([]string)[0] = "mutated"

	id, ok := r.ID()
	require.True(t, ok)
	assert.Equal(t, 1, id)
	assert.Equal(t, []string{"price_min"}, r.ProtectedFields())
}

func TestCollectionMaxIDAndIDs(t *testing.T) {
	c := NewCollection(Categories,
		Record{"id": 3},
		Record{"name": "no id"},
		Record{"id": 12},
		Record{"id": 3},
	)

	assert.Equal(t, 12, c.MaxID())
	assert.ElementsMatch(t, []int{3, 12}, c.IDs())
	assert.Equal(t, 4, c.Len())

	var nilColl *Collection
	assert.Equal(t, 0, nilColl.Len())
	assert.Equal(t, 0, nilColl.MaxID())
}

func TestReferenceTable(t *testing.T) {
	refs := DefaultReferences()

	assert.Equal(t, []string{"category_id"}, refs.FieldsReferencing(Services, Categories))
	assert.Empty(t, refs.FieldsReferencing(Services, Offers))

	deps := refs.Dependents(Services)
	assert.ElementsMatch(t, []Type{"service_practitioners", "service_resources", "offer_services"}, deps)
}
