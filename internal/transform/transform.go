// Package transform implements the Edit Transformer: folding a batch of
// host edit events over the Interval Store, classifying newly-created
// spans, and preserving the store's invariants.
package transform

import (
	"strings"

	"github.com/fakeyudi/tabd/internal/classify"
	"github.com/fakeyudi/tabd/internal/docref"
	"github.com/fakeyudi/tabd/internal/editreason"
	"github.com/fakeyudi/tabd/internal/hint"
	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/provenance"
	"github.com/fakeyudi/tabd/internal/textpos"
)

// Result is what one Apply call produces: the new interval set plus any
// side effects the Session Coordinator must act on.
type Result struct {
	Store []interval.Tagged
	// ClearAI is set when the classifier says lastAICommand should be
	// cleared: an explicit AIGenerated reason, or a terminal after-tool
	// AI-matched edit.
	ClearAI bool
	// PendingAIEdit is set when the before-tool branch fired: the caller
	// stores this as the session's pending AI edit batch, to be replayed
	// on the next postInsertEdit notification.
	PendingAIEdit *textpos.Edit
}

// Apply folds edits over store, consulting the Provenance Classifier and
// Position Algebra, and returns the resulting interval set.
func Apply(
	store []interval.Tagged,
	pasteHints []hint.PasteMarker,
	edits []textpos.Edit,
	reason editreason.Reason,
	hints *hint.Store,
	vcsCtx classify.VCSContext,
	now int64,
	author string,
	doc docref.DocumentRef,
) Result {
	edits = normalize(edits)
	edits = sortDescending(edits)

	current := append([]interval.Tagged(nil), store...)
	result := Result{}

	for _, e := range edits {
		outcome := classify.Classify(e, reason, pasteHints, hints, vcsCtx, now, author, doc)

		if outcome.ClearAI {
			result.ClearAI = true
		}
		if outcome.DerivedEdit != nil {
			result.PendingAIEdit = outcome.DerivedEdit
			// The before-tool branch emits no interval for this edit, but
			// the raw edit already happened to the document, so existing
			// intervals still need to be repositioned under it.
			current = foldBatch(current, e, false, doc)
			continue
		}

		isAI := outcome.Interval != nil && outcome.Interval.Kind == provenance.AIGenerated
		next := foldBatch(current, e, isAI, doc)
		if outcome.Interval != nil {
			next = append(next, *outcome.Interval)
		}
		current = dedupTouchingEmpties(next)
	}

	result.Store = current
	return result
}

// FoldOnly repositions store's intervals under edits without consulting the
// classifier or emitting any new interval. The Session Coordinator falls
// back to this when the classifier panics: the edit is still folded, just
// without AI metadata.
func FoldOnly(store []interval.Tagged, edits []textpos.Edit) []interval.Tagged {
	edits = sortDescending(normalize(edits))
	current := append([]interval.Tagged(nil), store...)
	for _, e := range edits {
		current = dedupTouchingEmpties(foldBatch(current, e, false, nil))
	}
	return current
}

// normalize implements a known host-quirk workaround: if the batch has more
// than one edit and the LAST edit's range ends at (0,0), the whole batch is
// a single inverted whole-file emission, sent in reverse order by the host.
func normalize(edits []textpos.Edit) []textpos.Edit {
	if len(edits) <= 1 {
		return edits
	}
	last := edits[len(edits)-1]
	if last.Range.End != (textpos.Position{}) {
		return edits
	}
	var sb strings.Builder
	for i := len(edits) - 1; i >= 0; i-- {
		sb.WriteString(edits[i].Replacement)
	}
	return []textpos.Edit{{Range: edits[0].Range, Replacement: sb.String()}}
}

// sortDescending returns a new slice ordered by Range.Start descending, so
// tail-to-head application never invalidates an earlier edit's position.
func sortDescending(edits []textpos.Edit) []textpos.Edit {
	out := append([]textpos.Edit(nil), edits...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Range.Start.Less(out[j].Range.Start); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// foldBatch runs the fold step for edit e against every interval in
// current, returning the surviving/split/shifted result set.
func foldBatch(current []interval.Tagged, e textpos.Edit, isAI bool, doc docref.DocumentRef) []interval.Tagged {
	var aiAdded textpos.Range
	if isAI {
		startOffset := doc.OffsetAt(e.Range.Start)
		aiAdded = textpos.Range{
			Start: e.Range.End,
			End:   doc.PositionAt(startOffset + len(e.Replacement)),
		}
	}

	out := make([]interval.Tagged, 0, len(current))
	for _, iv := range current {
		pieces, clamped, dropped := foldOne(iv, e, isAI, aiAdded, doc)
		if dropped {
			continue
		}
		if clamped != nil {
			out = append(out, *clamped)
			continue
		}
		out = append(out, pieces...)
	}
	return out
}

// foldOne applies the deletion, addition, and shift sub-steps to a single
// existing interval. It returns either:
//   - clamped != nil: the AI-clamp branch fired; this is the finished
//     interval to place directly into the output.
//   - dropped == true: the interval collapsed (inverted range) and should
//     be discarded.
//   - pieces: one or two intervals (split) to carry forward, already
//     shifted.
func foldOne(iv interval.Tagged, e textpos.Edit, isAI bool, aiAdded textpos.Range, doc docref.DocumentRef) (pieces []interval.Tagged, clamped *interval.Tagged, dropped bool) {
	deletionApplies := !e.Range.Empty() && e.Range.Intersects(iv.Range)

	if deletionApplies {
		if isAI {
			c := iv
			if aiAdded.Contains(c.Range.Start) {
				c.Range.Start = aiAdded.End
			}
			if aiAdded.Contains(c.Range.End) {
				c.Range.End = aiAdded.Start
			}
			if c.Range.End.Less(c.Range.Start) {
				return nil, nil, true
			}
			return nil, &c, false
		}

		if e.Range.Contains(iv.Range.Start) {
			iv.Range.Start = e.Range.End
		}
		if e.Range.Contains(iv.Range.End) {
			iv.Range.End = e.Range.Start
		}
		if iv.Range.End.Less(iv.Range.Start) {
			return nil, nil, true
		}
	}

	items := []interval.Tagged{iv}

	additionApplies := e.Replacement != "" && e.Range.Intersects(iv.Range)
	if additionApplies {
		left := iv
		left.Range = textpos.Range{Start: iv.Range.Start, End: e.Range.Start}
		right := iv
		right.Range = textpos.Range{Start: e.Range.Start, End: iv.Range.End}
		items = []interval.Tagged{left, right}
	}

	for i := range items {
		items[i].Range.Start = textpos.Shift(items[i].Range.Start, e)
		if items[i].Range.Empty() || items[i].Range.End != e.Range.End {
			items[i].Range.End = textpos.Shift(items[i].Range.End, e)
		}
	}

	return items, nil, false
}

// dedupTouchingEmpties runs a post-pass over the fold result: for each
// ordered pair (i,j) with i<j, if the intervals touch, drop whichever of
// the pair is empty (j preferred, else i). This runs over the full union
// each edit produces, not just the mutated side.
func dedupTouchingEmpties(items []interval.Tagged) []interval.Tagged {
	dropped := make([]bool, len(items))
	for i := 0; i < len(items); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			if dropped[j] {
				continue
			}
			a, b := items[i].Range, items[j].Range
			if a.End == b.Start || a.Start == b.End {
				if items[j].Empty() {
					dropped[j] = true
				} else if items[i].Empty() {
					dropped[i] = true
				}
			}
		}
	}
	out := make([]interval.Tagged, 0, len(items))
	for i, it := range items {
		if !dropped[i] {
			out = append(out, it)
		}
	}
	return out
}
