package reconciler

import (
	"fmt"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
	"github.com/dialoggauge/catalogsync/pkg/normalize"
)

// MatchStatus tags a local record's matching outcome.
type MatchStatus string

const (
	// Matched means a canonical record with the same normalized name
	// exists; the local record adopts its identifier.
	Matched MatchStatus = "matched"
	// MatchNew means no canonical counterpart exists; a fresh identifier
	// is allocated above the canonical identifier space.
	MatchNew MatchStatus = "new"
)

// Match pairs a local record with its canonical counterpart, or marks it
// new. Exactly one status per local record.
type Match struct {
	Record      catalogs.Record
	Status      MatchStatus
	CanonicalID int
	Canonical   catalogs.Record
}

// canonicalIndex is the immutable normalized-name lookup built once per
// pass over the canonical collection.
type canonicalIndex map[string]catalogs.Record

// buildCanonicalIndex indexes canonical records by normalized name.
// Canonical names are assumed unique per source; when two normalize to
// the same key the last one in input order wins, recorded as an audit
// note rather than an error. Records with empty normalized names are not
// indexed and can never be matched.
func buildCanonicalIndex(canonical *catalogs.Collection, result *Result) canonicalIndex {
	if canonical == nil {
		return canonicalIndex{}
	}

	index := make(canonicalIndex, canonical.Len())
	for _, rec := range canonical.Records {
		key := normalize.Key(rec.DisplayName())
		if key == "" {
			continue
		}
		if prev, dup := index[key]; dup {
			prevID, _ := prev.ID()
			curID, _ := rec.ID()
			result.Notes = append(result.Notes, fmt.Sprintf(
				"ambiguous canonical name %q: id %d shadows id %d (last wins)",
				key, curID, prevID))
		}
		index[key] = rec
	}
	return index
}

// matchRecords pairs each local record against the canonical index,
// preserving input order. Matching is deterministic: the same inputs
// always produce the same match set.
func matchRecords(local *catalogs.Collection, index canonicalIndex) []Match {
	matches := make([]Match, 0, local.Len())
	for _, rec := range local.Records {
		key := normalize.Key(rec.DisplayName())

		if key != "" {
			if canonical, ok := index[key]; ok {
				if canonicalID, hasID := canonical.ID(); hasID {
					matches = append(matches, Match{
						Record:      rec,
						Status:      Matched,
						CanonicalID: canonicalID,
						Canonical:   canonical,
					})
					continue
				}
			}
		}

		matches = append(matches, Match{Record: rec, Status: MatchNew})
	}
	return matches
}
