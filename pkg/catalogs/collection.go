package catalogs

// Type names a homogeneous collection of records.
type Type string

// String returns the string representation of a collection type.
func (t Type) String() string {
	return string(t)
}

// The entity types the surrounding system synchronizes.
const (
	Categories    Type = "categories"
	Practitioners Type = "practitioners"
	Services      Type = "services"
	Resources     Type = "resources"
	Offers        Type = "offers"
)

// Collection is an ordered, homogeneous set of records. Input order is
// significant: conflict resolution keeps the first record of a duplicate
// group, and canonical index building lets later duplicates win.
type Collection struct {
	Type    Type
	Records []Record
}

// NewCollection creates a collection of the given type.
func NewCollection(t Type, records ...Record) *Collection {
	return &Collection{Type: t, Records: records}
}

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// Clone returns a copy with cloned records, preserving order.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := &Collection{Type: c.Type, Records: make([]Record, len(c.Records))}
	for i, r := range c.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// MaxID returns the largest identifier present, or 0 when no record
// carries one.
func (c *Collection) MaxID() int {
	maxID := 0
	if c == nil {
		return maxID
	}
	for _, r := range c.Records {
		if id, ok := r.ID(); ok && id > maxID {
			maxID = id
		}
	}
	return maxID
}

// IDs returns the set of identifiers present in the collection.
// Duplicates collapse; absent identifiers are skipped.
func (c *Collection) IDs() []int {
	if c == nil {
		return nil
	}
	seen := make(map[int]struct{}, len(c.Records))
	ids := make([]int, 0, len(c.Records))
	for _, r := range c.Records {
		if id, ok := r.ID(); ok {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}
