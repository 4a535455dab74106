// Package idalloc issues identifiers for records that need one. An
// allocator is seeded with every identifier already in use and hands out
// the smallest free integer at or above its starting candidate, never
// revisiting a lower slot, so allocation order reads as ID order in audits.
package idalloc

import (
	"math"

	"github.com/dialoggauge/catalogsync/pkg/errors"
)

// Allocator produces the next unused identifier from a used-ID set.
// It is stateful and scoped to a single reconciliation pass; it is not
// safe for concurrent use.
type Allocator struct {
	used map[int]struct{}
	next int
}

// New creates an allocator starting at start, seeded with the given
// identifiers. Identifiers below start are remembered so they are never
// reissued, but they do not move the starting candidate.
func New(start int, used ...int) *Allocator {
	a := &Allocator{
		used: make(map[int]struct{}, len(used)),
		next: start,
	}
	for _, id := range used {
		a.used[id] = struct{}{}
	}
	return a
}

// Next returns the smallest free identifier at or above the current
// candidate and marks it used. Successive calls are monotonically
// non-decreasing within one allocator instance.
func (a *Allocator) Next() (int, error) {
	for a.next < math.MaxInt {
		id := a.next
		a.next++
		if _, taken := a.used[id]; !taken {
			a.used[id] = struct{}{}
			return id, nil
		}
	}
	return 0, &errors.AllocatorExhaustedError{Start: a.next, Used: len(a.used)}
}

// Reserve marks an identifier as used without issuing it. Reserving an
// identifier below the current candidate only prevents reuse; it never
// rewinds the allocator.
func (a *Allocator) Reserve(id int) {
	a.used[id] = struct{}{}
}

// InUse reports whether an identifier is already used or issued.
func (a *Allocator) InUse(id int) bool {
	_, ok := a.used[id]
	return ok
}
