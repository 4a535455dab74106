package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
)

func TestRewriteReferencesAppliesMapping(t *testing.T) {
	services := catalogs.NewCollection(catalogs.Services,
		catalogs.Record{"id": 1, "name": "Massage", "category_id": 5},
		catalogs.Record{"id": 2, "name": "Facial", "category_id": 12},
	)
	mapping := IdentityMapping{5: 12, 3: 3}

	warnings := RewriteReferences(services, []string{"category_id"}, mapping)

	ref, _ := services.Records[0].Ref("category_id")
	assert.Equal(t, 12, ref, "mapped reference is rewritten")

	ref, _ = services.Records[1].Ref("category_id")
	assert.Equal(t, 12, ref, "reference already in the new id space is untouched")

	assert.Empty(t, warnings)
}

func TestRewriteReferencesFlagsUnknownIDs(t *testing.T) {
	services := catalogs.NewCollection(catalogs.Services,
		catalogs.Record{"id": 1, "category_id": 5},
		catalogs.Record{"id": 2, "category_id": 99},
	)
	mapping := IdentityMapping{5: 12}

	warnings := RewriteReferences(services, []string{"category_id"}, mapping)

	ref, _ := services.Records[0].Ref("category_id")
	assert.Equal(t, 12, ref)

	ref, _ = services.Records[1].Ref("category_id")
	assert.Equal(t, 99, ref, "unmapped reference stays as-is")

	require.Len(t, warnings, 1)
	assert.Equal(t, 99, warnings[0].Ref)
	assert.Equal(t, "category_id", warnings[0].Field)
	assert.Equal(t, 1, warnings[0].Index)
	assert.Contains(t, warnings[0].String(), "references unknown id 99")
}

func TestRewriteReferencesIntegrity(t *testing.T) {
	// After rewriting, no dependent record may hold a stale identifier
	// that was a mapping key, unless it is also a mapping value.
	mapping := IdentityMapping{1: 10, 2: 20, 3: 3}
	dep := catalogs.NewCollection("service_practitioners",
		catalogs.Record{"service_id": 1},
		catalogs.Record{"service_id": 2},
		catalogs.Record{"service_id": 3},
		catalogs.Record{"service_id": 42},
	)

	RewriteReferences(dep, []string{"service_id"}, mapping)

	newIDs := mapping.NewIDs()
	for _, rec := range dep.Records {
		ref, ok := rec.Ref("service_id")
		require.True(t, ok)
		if _, wasOld := mapping[ref]; wasOld {
			_, isNew := newIDs[ref]
			assert.True(t, isNew, "reference %d is a remapped old id that survived rewriting", ref)
		}
	}
}

func TestRewriteReferencesSkipsRecordsWithoutField(t *testing.T) {
	dep := catalogs.NewCollection("offer_services",
		catalogs.Record{"offer_id": 1},
	)
	warnings := RewriteReferences(dep, []string{"service_id"}, IdentityMapping{1: 2})

	assert.Empty(t, warnings, "absent foreign-key fields are not an error")
	_, ok := dep.Records[0].Ref("service_id")
	assert.False(t, ok)
}

func TestRewriteReferencesNilInputs(t *testing.T) {
	assert.Nil(t, RewriteReferences(nil, []string{"x"}, IdentityMapping{1: 2}))
	dep := catalogs.NewCollection(catalogs.Services, catalogs.Record{"category_id": 1})
	assert.Nil(t, RewriteReferences(dep, nil, IdentityMapping{1: 2}))
	assert.Nil(t, RewriteReferences(dep, []string{"category_id"}, nil))
}
