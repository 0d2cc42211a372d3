// Package coalesce implements the Edit Coalescer: collapsing runs of
// adjacent UserEdit intervals into one at persist time.
package coalesce

import (
	"sort"

	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/provenance"
	"github.com/fakeyudi/tabd/internal/textpos"
)

// WindowMS bounds, in milliseconds, how far a UserEdit interval's creation
// timestamp may lie from that of the first interval of its run: the run
// extends only while the difference is below WindowMS.
const WindowMS = 60_000

// Coalesce collapses runs of touching, time-adjacent UserEdit intervals into
// a single interval per run. Non-UserEdit intervals pass through unchanged,
// in their original relative order.
func Coalesce(items []interval.Tagged) []interval.Tagged {
	var userEdits []interval.Tagged
	var rest []interval.Tagged
	for _, it := range items {
		if it.Kind == provenance.UserEdit {
			userEdits = append(userEdits, it)
		} else {
			rest = append(rest, it)
		}
	}

	sort.SliceStable(userEdits, func(i, j int) bool {
		a, b := userEdits[i].Range, userEdits[j].Range
		if a.Start != b.Start {
			return a.Start.Less(b.Start)
		}
		return a.End.Less(b.End)
	})

	out := append([]interval.Tagged(nil), rest...)

	i := 0
	for i < len(userEdits) {
		group := []interval.Tagged{userEdits[i]}
		j := i + 1
		for j < len(userEdits) {
			prev := group[len(group)-1]
			cur := userEdits[j]
			if prev.Range.End != cur.Range.Start {
				break
			}
			if abs64(cur.CreationTS-group[0].CreationTS) >= WindowMS {
				break
			}
			group = append(group, cur)
			j++
		}
		out = append(out, collapse(group))
		i = j
	}

	return out
}

// collapse merges a group of size >= 1 into a single interval spanning
// group[0].start to group[-1].end, keeping the minimum creation timestamp
// and group[0]'s author/options.
func collapse(group []interval.Tagged) interval.Tagged {
	if len(group) == 1 {
		return group[0]
	}
	first, last := group[0], group[len(group)-1]
	minTS := first.CreationTS
	for _, g := range group[1:] {
		if g.CreationTS < minTS {
			minTS = g.CreationTS
		}
	}
	return interval.Tagged{
		Range:      textpos.Range{Start: first.Range.Start, End: last.Range.End},
		Kind:       provenance.UserEdit,
		CreationTS: minTS,
		Author:     first.Author,
		Options:    first.Options,
	}
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
