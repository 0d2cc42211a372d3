// Package mergelog implements the Log Merger: reconciling a just-loaded
// persisted annotation log with the live Interval Store by timestamp
// precedence.
package mergelog

import (
	"sort"

	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/textpos"
)

// Merge folds newBatch into store one interval at a time, then deduplicates
// by full-field equality and sorts by (start.line, start.column), matching
// the ordering the interval store maintains.
func Merge(store []interval.Tagged, newBatch []interval.Tagged) []interval.Tagged {
	current := append([]interval.Tagged(nil), store...)
	for _, n := range newBatch {
		current = mergeOne(current, n)
	}
	return dedupSorted(current)
}

// mergeOne reconciles a single new interval n against the current set,
// finding every existing interval that strictly overlaps it, resolving each
// overlap by creation-timestamp precedence.
func mergeOne(current []interval.Tagged, n interval.Tagged) []interval.Tagged {
	kept := make([]interval.Tagged, 0, len(current)+1)
	pending := []interval.Tagged{n}

	for _, ex := range current {
		var survivingPending []interval.Tagged
		exWins := true

		for _, np := range pending {
			if !ex.Range.Intersects(np.Range) {
				survivingPending = append(survivingPending, np)
				continue
			}

			if np.CreationTS > ex.CreationTS {
				// np wins: ex is trimmed down to the slices outside np.
				left := ex
				left.Range = textpos.Range{Start: ex.Range.Start, End: np.Range.Start}
				right := ex
				right.Range = textpos.Range{Start: np.Range.End, End: ex.Range.End}
				if validRange(left.Range) {
					kept = append(kept, left)
				}
				if validRange(right.Range) {
					kept = append(kept, right)
				}
				exWins = false
				survivingPending = append(survivingPending, np)
			} else {
				// ex wins: np is trimmed down to the slices outside ex, and
				// the full np is never added.
				left := np
				left.Range = textpos.Range{Start: np.Range.Start, End: ex.Range.Start}
				right := np
				right.Range = textpos.Range{Start: ex.Range.End, End: np.Range.End}
				if validRange(left.Range) {
					survivingPending = append(survivingPending, left)
				}
				if validRange(right.Range) {
					survivingPending = append(survivingPending, right)
				}
			}
		}

		pending = survivingPending
		if exWins {
			kept = append(kept, ex)
		}
	}

	kept = append(kept, pending...)
	return kept
}

// validRange reports whether r is a well-formed, non-empty span: one edge
// of a one-sided overlap can end up inverted (Start after End) when the
// overlapping interval only trims from one side, and such a slice must be
// dropped rather than kept as a malformed interval.
func validRange(r textpos.Range) bool {
	return r.Start.Less(r.End)
}

// dedupSorted removes full-field duplicates and sorts by (start.line,
// start.column) then end, matching interval.Store's own ordering.
func dedupSorted(items []interval.Tagged) []interval.Tagged {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Range, items[j].Range
		if a.Start != b.Start {
			return a.Start.Less(b.Start)
		}
		return a.End.Less(b.End)
	})

	out := make([]interval.Tagged, 0, len(items))
	for _, it := range items {
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
	return out
}
