package interval

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/tabd/internal/provenance"
	"github.com/fakeyudi/tabd/internal/textpos"
)

func pos(line, col int) textpos.Position { return textpos.Position{Line: line, Column: col} }

func tagged(startLine, startCol, endLine, endCol int, kind provenance.Kind, ts int64) Tagged {
	return Tagged{
		Range:      textpos.Range{Start: pos(startLine, startCol), End: pos(endLine, endCol)},
		Kind:       kind,
		CreationTS: ts,
	}
}

func TestNewStoreSorts(t *testing.T) {
	items := []Tagged{
		tagged(2, 0, 2, 5, provenance.UserEdit, 1),
		tagged(0, 0, 0, 3, provenance.UserEdit, 2),
		tagged(1, 0, 1, 1, provenance.UserEdit, 3),
	}
	s := NewStore(items)
	if !s.CheckSorted() {
		t.Fatal("expected NewStore to sort by range")
	}
	got := s.Items()
	if got[0].Range.Start != pos(0, 0) {
		t.Errorf("first item should start at line 0, got %+v", got[0].Range.Start)
	}
}

func TestDedupRemovesFullFieldDuplicates(t *testing.T) {
	a := tagged(0, 0, 0, 3, provenance.UserEdit, 1)
	s := NewStore([]Tagged{a, a, a})
	s.Dedup()
	if s.Len() != 1 {
		t.Fatalf("Dedup() left %d items, want 1", s.Len())
	}
}

func TestDedupKeepsDistinctIntervalsAtSameRange(t *testing.T) {
	a := tagged(0, 0, 0, 3, provenance.UserEdit, 1)
	b := tagged(0, 0, 0, 3, provenance.AIGenerated, 1)
	s := NewStore([]Tagged{a, b})
	s.Dedup()
	if s.Len() != 2 {
		t.Fatalf("Dedup() left %d items, want 2 (different Kind)", s.Len())
	}
}

func TestCheckInvariantsRejectsEndBeforeStart(t *testing.T) {
	s := NewStore([]Tagged{{Range: textpos.Range{Start: pos(0, 5), End: pos(0, 2)}, Kind: provenance.UserEdit}})
	if err := s.CheckInvariants(10); err == nil {
		t.Fatal("expected an invariant error for end before start")
	}
}

func TestCheckInvariantsRejectsStrictOverlap(t *testing.T) {
	a := tagged(0, 0, 0, 5, provenance.UserEdit, 1)
	b := tagged(0, 2, 0, 8, provenance.UserEdit, 2)
	s := NewStore([]Tagged{a, b})
	if err := s.CheckInvariants(10); err == nil {
		t.Fatal("expected an invariant error for overlapping non-empty intervals")
	}
}

func TestCheckInvariantsAllowsTouchingIntervals(t *testing.T) {
	a := tagged(0, 0, 0, 5, provenance.UserEdit, 1)
	b := tagged(0, 5, 0, 8, provenance.UserEdit, 2)
	s := NewStore([]Tagged{a, b})
	if err := s.CheckInvariants(10); err != nil {
		t.Fatalf("touching intervals should be allowed, got %v", err)
	}
}

func TestCheckInvariantsIgnoresEmptyIntervalOverlap(t *testing.T) {
	a := tagged(0, 3, 0, 3, provenance.UserEdit, 1)
	b := tagged(0, 3, 0, 3, provenance.AIGenerated, 2)
	s := NewStore([]Tagged{a, b})
	if err := s.CheckInvariants(10); err != nil {
		t.Fatalf("empty intervals should never trigger overlap checks, got %v", err)
	}
}

// TestNewStoreAlwaysSortedAndInvariant checks that arbitrary batches of
// non-overlapping, well-formed intervals sort cleanly and pass invariant
// checks regardless of input order.
func TestNewStoreAlwaysSortedAndInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 15).Draw(t, "n")
		var items []Tagged
		line := 0
		for i := 0; i < n; i++ {
			start := rapid.IntRange(0, 5).Draw(t, "startCol")
			width := rapid.IntRange(0, 5).Draw(t, "width")
			items = append(items, tagged(line, start, line, start+width, provenance.UserEdit, int64(i)))
			line++
		}
		// Shuffle by re-inserting in reverse.
		reversed := make([]Tagged, len(items))
		for i, it := range items {
			reversed[len(items)-1-i] = it
		}

		s := NewStore(reversed)
		if !s.CheckSorted() {
			t.Fatal("store not sorted after NewStore")
		}
		if err := s.CheckInvariants(0); err != nil {
			t.Fatalf("invariant violated: %v", err)
		}
	})
}

func TestTaggedEqualRequiresAllFields(t *testing.T) {
	a := tagged(0, 0, 0, 3, provenance.UserEdit, 1)
	a.Author = "alice"
	b := a
	b.Author = "bob"
	if a.Equal(b) {
		t.Fatal("Equal should require Author equality")
	}
}
