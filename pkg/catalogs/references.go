package catalogs

// Reference declares that a field of a dependent collection holds the
// identifier of a record in another collection.
type Reference struct {
	Field string
	To    Type
}

// ReferenceTable maps each dependent collection type to the foreign-key
// fields it carries. The engine uses it to drive cascading rewrites and to
// derive the ordering constraint between a collection and its dependents.
type ReferenceTable map[Type][]Reference

// DefaultReferences is the entity graph of the synchronized catalog:
// services point at categories, link collections point at both ends.
func DefaultReferences() ReferenceTable {
	return ReferenceTable{
		Services: {
			{Field: "category_id", To: Categories},
		},
		"service_practitioners": {
			{Field: "service_id", To: Services},
			{Field: "practitioner_id", To: Practitioners},
		},
		"service_resources": {
			{Field: "service_id", To: Services},
			{Field: "resource_id", To: Resources},
		},
		"offer_services": {
			{Field: "offer_id", To: Offers},
			{Field: "service_id", To: Services},
		},
		"resource_instances": {
			{Field: "resource_id", To: Resources},
		},
	}
}

// FieldsReferencing returns the foreign-key fields of a dependent
// collection that point at the given target collection.
func (t ReferenceTable) FieldsReferencing(dependent, target Type) []string {
	var fields []string
	for _, ref := range t[dependent] {
		if ref.To == target {
			fields = append(fields, ref.Field)
		}
	}
	return fields
}

// Dependents returns the collection types that carry at least one
// reference to the target collection.
func (t ReferenceTable) Dependents(target Type) []Type {
	var deps []Type
	for dependent, refs := range t {
		for _, ref := range refs {
			if ref.To == target {
				deps = append(deps, dependent)
				break
			}
		}
	}
	return deps
}
