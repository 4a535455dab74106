package reconciler

import (
	"sort"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
)

// SortByID reorders a collection by ascending identifier. Records without
// an identifier sort last, keeping their relative order. The stable sort
// keeps duplicate-free output deterministic.
func SortByID(c *catalogs.Collection) {
	if c == nil {
		return
	}
	sort.SliceStable(c.Records, func(i, j int) bool {
		a, aok := c.Records[i].ID()
		b, bok := c.Records[j].ID()
		if aok != bok {
			return aok
		}
		return a < b
	})
}

// RenumberSortOrder reassigns sort_order 1..n in current record order,
// skipping records that protect the field. Applied after reconciliation
// on collections that carry an explicit ordering.
func RenumberSortOrder(c *catalogs.Collection) {
	if c == nil {
		return
	}
	for i, rec := range c.Records {
		if _, has := rec[catalogs.FieldSortOrder]; !has {
			continue
		}
		if rec.IsProtected(catalogs.FieldSortOrder) {
			continue
		}
		rec[catalogs.FieldSortOrder] = i + 1
	}
}
