// Package interval implements the ordered, invariant-preserving collection
// of tagged intervals for one document.
package interval

import (
	"sort"
	"strconv"

	"github.com/fakeyudi/tabd/internal/provenance"
	"github.com/fakeyudi/tabd/internal/textpos"
)

// Tagged is a Range plus its provenance metadata. Equality requires equality
// on every field, including CreationTS.
type Tagged struct {
	Range      textpos.Range
	Kind       provenance.Kind
	CreationTS int64 // ms since epoch
	Author     string
	Options    provenance.Options
}

// Equal reports full-field equality between two Tagged intervals.
func (t Tagged) Equal(o Tagged) bool {
	return t.Range == o.Range &&
		t.Kind == o.Kind &&
		t.CreationTS == o.CreationTS &&
		t.Author == o.Author &&
		t.Options == o.Options
}

// Empty reports whether the interval spans zero characters.
func (t Tagged) Empty() bool {
	return t.Range.Empty()
}

// Store is the ordered collection of tagged intervals for one document.
// The zero value is an empty store.
type Store struct {
	items []Tagged
}

// NewStore builds a Store from an initial slice, sorting it on construction.
func NewStore(items []Tagged) *Store {
	s := &Store{items: append([]Tagged(nil), items...)}
	s.Sort()
	return s
}

// Items returns a copy of the store's intervals in their current order.
func (s *Store) Items() []Tagged {
	return append([]Tagged(nil), s.items...)
}

// Len reports the number of intervals in the store.
func (s *Store) Len() int { return len(s.items) }

// Replace swaps the store's contents wholesale with items, as given.
func (s *Store) Replace(items []Tagged) {
	s.items = items
}

// Sort orders intervals by Start (primary) then End.
func (s *Store) Sort() {
	sort.SliceStable(s.items, func(i, j int) bool {
		a, b := s.items[i].Range, s.items[j].Range
		if a.Start != b.Start {
			return a.Start.Less(b.Start)
		}
		return a.End.Less(b.End)
	})
}

// Dedup removes full-field duplicate intervals, preserving order of first
// occurrence.
func (s *Store) Dedup() {
	out := make([]Tagged, 0, len(s.items))
	for _, it := range s.items {
		dup := false
		for _, kept := range out {
			if kept.Equal(it) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it)
		}
	}
	s.items = out
}

// CheckInvariants validates range well-formedness, in-bounds positions, and
// no-strict-overlap against docLines (the current number of lines in the
// document, used to bound positions), returning a descriptive error naming
// the first violation found, or nil.
//
// Sorted order and absence of duplicates are structural properties that
// Store's own mutators are responsible for maintaining, not something an
// external caller re-checks on arbitrary access, so they're validated
// separately by CheckSorted/CheckNoDuplicates for use in tests.
func (s *Store) CheckInvariants(docLines int) error {
	for i, it := range s.items {
		if it.Range.End.Less(it.Range.Start) {
			return &InvariantError{Index: i, Reason: "end before start"}
		}
		if it.Range.Start.Line < 0 || it.Range.Start.Column < 0 {
			return &InvariantError{Index: i, Reason: "start out of bounds"}
		}
		if it.Range.End.Line < 0 || it.Range.End.Column < 0 {
			return &InvariantError{Index: i, Reason: "end out of bounds"}
		}
		if docLines > 0 && (it.Range.Start.Line >= docLines || it.Range.End.Line >= docLines) {
			return &InvariantError{Index: i, Reason: "range exceeds document bounds"}
		}
	}
	for i := range s.items {
		for j := i + 1; j < len(s.items); j++ {
			a, b := s.items[i], s.items[j]
			if a.Empty() || b.Empty() {
				continue
			}
			if strictlyOverlaps(a.Range, b.Range) {
				return &InvariantError{Index: j, Reason: "strictly overlaps another non-empty interval"}
			}
		}
	}
	return nil
}

// CheckSorted reports whether the store is sorted.
func (s *Store) CheckSorted() bool {
	for i := 1; i < len(s.items); i++ {
		a, b := s.items[i-1].Range, s.items[i].Range
		if b.Start.Less(a.Start) {
			return false
		}
		if a.Start == b.Start && b.End.Less(a.End) {
			return false
		}
	}
	return true
}

// CheckNoDuplicates reports whether the store is free of full-field
// duplicate intervals.
func (s *Store) CheckNoDuplicates() bool {
	for i := range s.items {
		for j := i + 1; j < len(s.items); j++ {
			if s.items[i].Equal(s.items[j]) {
				return false
			}
		}
	}
	return true
}

// strictlyOverlaps reports whether two non-empty ranges overlap by more than
// a touch point (touching at a.end == b.start is allowed).
func strictlyOverlaps(a, b textpos.Range) bool {
	if a.End == b.Start || a.Start == b.End {
		return false
	}
	return a.Start.Less(b.End) && b.Start.Less(a.End)
}

// InvariantError describes a single invariant violation found by
// CheckInvariants, identifying the offending interval's index.
type InvariantError struct {
	Index  int
	Reason string
}

func (e *InvariantError) Error() string {
	return "interval store invariant violated at index " + strconv.Itoa(e.Index) + ": " + e.Reason
}
