// Package catalogs defines the record and collection types the
// reconciliation engine operates on. Records are opaque field bags with a
// small contractual surface: an integer identifier, a display name (plain
// or localized), and an optional set of protected field names that manual
// edits have claimed.
package catalogs

import (
	"encoding/json"
	"slices"
)

// Contractual field names.
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldNameI18n  = "name_i18n"
	FieldProtected = "protected_fields"
	FieldArchived  = "is_archived"
	FieldSortOrder = "sort_order"
)

// Record is an opaque mapping of field name to value. The engine only
// interprets the contractual fields; everything else passes through merge
// and rewrite untouched unless the canonical side carries it.
type Record map[string]any

// ID returns the record's identifier and whether one is present.
// Null and absent identifiers both report false.
func (r Record) ID() (int, bool) {
	return intField(r[FieldID])
}

// SetID assigns the record's identifier.
func (r Record) SetID(id int) {
	r[FieldID] = id
}

// DisplayName resolves the record's display name, preferring the English
// localized name and falling back to the plain name field.
func (r Record) DisplayName() string {
	if i18n, ok := r[FieldNameI18n]; ok {
		if name := englishName(i18n); name != "" {
			return name
		}
	}
	if name, ok := r[FieldName].(string); ok {
		return name
	}
	return ""
}

// ProtectedFields returns the record's protected field names in their
// declared order. Absent or malformed values yield nil.
func (r Record) ProtectedFields() []string {
	switch v := r[FieldProtected].(type) {
	case []string:
		return v
	case []any:
		fields := make([]string, 0, len(v))
		for _, f := range v {
			if s, ok := f.(string); ok {
				fields = append(fields, s)
			}
		}
		return fields
	default:
		return nil
	}
}

// IsProtected reports whether a field name is in the record's protected set.
func (r Record) IsProtected(field string) bool {
	return slices.Contains(r.ProtectedFields(), field)
}

// IsArchived reports the canonical archived flag, defaulting to false.
func (r Record) IsArchived() bool {
	archived, _ := r[FieldArchived].(bool)
	return archived
}

// Ref returns the integer reference stored under a foreign-key field,
// and whether one is present.
func (r Record) Ref(field string) (int, bool) {
	return intField(r[field])
}

// Clone returns a copy of the record that can be mutated without
// affecting the original's top-level fields. The protected set is copied
// so merge output never aliases the input's slice.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	if protected := r.ProtectedFields(); protected != nil {
		out[FieldProtected] = slices.Clone(protected)
	}
	return out
}

// intField coerces the identifier encodings seen in practice: Go ints,
// JSON float64, and json.Number. Anything else reports absent.
func intField(v any) (int, bool) {
	switch id := v.(type) {
	case int:
		return id, true
	case int64:
		return int(id), true
	case float64:
		if id == float64(int(id)) {
			return int(id), true
		}
		return 0, false
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case uint64:
		return int(id), true
	default:
		return 0, false
	}
}

// englishName pulls the "en" entry out of a name_i18n value, tolerating
// both typed and decoded-from-JSON map shapes.
func englishName(i18n any) string {
	switch m := i18n.(type) {
	case map[string]string:
		return m["en"]
	case map[string]any:
		if s, ok := m["en"].(string); ok {
			return s
		}
	}
	return ""
}
