package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/tabd/internal/classify"
	"github.com/fakeyudi/tabd/internal/docref"
	"github.com/fakeyudi/tabd/internal/editreason"
	"github.com/fakeyudi/tabd/internal/hint"
	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/provenance"
	"github.com/fakeyudi/tabd/internal/textpos"
)

func pos(line, col int) textpos.Position { return textpos.Position{Line: line, Column: col} }

func TestApplySingleCharacterEditEmitsUserEdit(t *testing.T) {
	doc := docref.NewRope("file:///a.go", "hello world")
	e := textpos.Edit{Range: textpos.Range{Start: pos(0, 5), End: pos(0, 5)}, Replacement: "x"}

	result := Apply(nil, nil, []textpos.Edit{e}, editreason.None, &hint.Store{}, classify.VCSContext{}, 1000, "alice", doc)

	require.Len(t, result.Store, 1)
	require.Equal(t, provenance.UserEdit, result.Store[0].Kind)
	require.Equal(t, "alice", result.Store[0].Author)
}

func TestApplyShiftsExistingIntervalsAfterInsertion(t *testing.T) {
	doc := docref.NewRope("file:///a.go", "0123456789")
	existing := []interval.Tagged{{
		Range: textpos.Range{Start: pos(0, 8), End: pos(0, 10)}, Kind: provenance.UserEdit, CreationTS: 1,
	}}
	insertAt0 := textpos.Edit{Range: textpos.Range{Start: pos(0, 0), End: pos(0, 0)}, Replacement: "ab"}

	result := Apply(existing, nil, []textpos.Edit{insertAt0}, editreason.None, &hint.Store{}, classify.VCSContext{}, 1000, "alice", doc)

	var shifted bool
	for _, it := range result.Store {
		if it.Kind == provenance.UserEdit && it.CreationTS == 1 {
			require.Equal(t, pos(0, 10), it.Range.Start)
			shifted = true
		}
	}
	require.True(t, shifted, "existing interval should have shifted right by the insertion length")
}

func TestApplyDeletionSpanningIntervalDropsIt(t *testing.T) {
	doc := docref.NewRope("file:///a.go", "0123456789")
	existing := []interval.Tagged{{
		Range: textpos.Range{Start: pos(0, 3), End: pos(0, 5)}, Kind: provenance.AIGenerated, CreationTS: 1,
	}}
	deleteAll := textpos.Edit{Range: textpos.Range{Start: pos(0, 0), End: pos(0, 10)}, Replacement: ""}

	result := Apply(existing, nil, []textpos.Edit{deleteAll}, editreason.Undo, &hint.Store{}, classify.VCSContext{}, 1000, "alice", doc)

	for _, it := range result.Store {
		if it.CreationTS == 1 && it.Kind == provenance.AIGenerated {
			t.Fatalf("existing interval should have been dropped by the spanning deletion, found %+v", it)
		}
	}
}

func TestApplyPasteReasonEmitsPasteInterval(t *testing.T) {
	doc := docref.NewRope("file:///a.go", "")
	e := textpos.Edit{Range: textpos.Range{Start: pos(0, 0), End: pos(0, 0)}, Replacement: "big pasted chunk"}

	result := Apply(nil, nil, []textpos.Edit{e}, editreason.Paste, &hint.Store{}, classify.VCSContext{}, 1000, "alice", doc)

	require.Len(t, result.Store, 1)
	require.Equal(t, provenance.Paste, result.Store[0].Kind)
}

func TestApplyPasteHintPromotionDoesNotLeakToOtherEditsInBatch(t *testing.T) {
	doc := docref.NewRope("file:///a.go", "0123456789ABCDEF")

	// pastedEdit's start matches a paste hint and should be reclassified as
	// Paste. unrelatedEdit's start matches no hint and must stay a plain
	// UserEdit, even though it's folded in the same Apply call.
	pastedEdit := textpos.Edit{Range: textpos.Range{Start: pos(0, 10), End: pos(0, 10)}, Replacement: "big pasted chunk of text"}
	unrelatedEdit := textpos.Edit{Range: textpos.Range{Start: pos(0, 2), End: pos(0, 2)}, Replacement: "x"}

	pasteHints := []hint.PasteMarker{
		{Range: textpos.Range{Start: pos(0, 10), End: pos(0, 10)}, CreationTS: 950},
	}

	result := Apply(nil, pasteHints, []textpos.Edit{pastedEdit, unrelatedEdit}, editreason.None, &hint.Store{}, classify.VCSContext{}, 1000, "alice", doc)

	var pasteCount, userEditCount int
	for _, it := range result.Store {
		switch it.Kind {
		case provenance.Paste:
			pasteCount++
		case provenance.UserEdit:
			userEditCount++
		}
	}
	require.Equal(t, 1, pasteCount, "only the edit whose start matches the paste hint should be tagged Paste")
	require.Equal(t, 1, userEditCount, "the unrelated edit must not inherit the Paste reclassification")
}

func TestApplyResultAlwaysSatisfiesInvariants(t *testing.T) {
	doc := docref.NewRope("file:///a.go", "0123456789\n0123456789")
	existing := []interval.Tagged{
		{Range: textpos.Range{Start: pos(0, 2), End: pos(0, 5)}, Kind: provenance.UserEdit, CreationTS: 1},
		{Range: textpos.Range{Start: pos(1, 0), End: pos(1, 3)}, Kind: provenance.AIGenerated, CreationTS: 2},
	}
	edits := []textpos.Edit{
		{Range: textpos.Range{Start: pos(0, 4), End: pos(0, 4)}, Replacement: "XY"},
		{Range: textpos.Range{Start: pos(1, 1), End: pos(1, 2)}, Replacement: ""},
	}

	result := Apply(existing, nil, edits, editreason.None, &hint.Store{}, classify.VCSContext{}, 1000, "alice", doc)

	s := interval.NewStore(result.Store)
	require.NoError(t, s.CheckInvariants(0))
}

func TestFoldOnlyRepositionsWithoutClassifying(t *testing.T) {
	existing := []interval.Tagged{{
		Range: textpos.Range{Start: pos(0, 5), End: pos(0, 7)}, Kind: provenance.UserEdit, CreationTS: 1, Author: "alice",
	}}
	insertAt0 := textpos.Edit{Range: textpos.Range{Start: pos(0, 0), End: pos(0, 0)}, Replacement: "ab"}

	out := FoldOnly(existing, []textpos.Edit{insertAt0})

	require.Len(t, out, 1)
	require.Equal(t, pos(0, 7), out[0].Range.Start)
	require.Equal(t, "alice", out[0].Author)
}

func TestNormalizeReverseJoinsWholeFileBatch(t *testing.T) {
	edits := []textpos.Edit{
		{Range: textpos.Range{Start: pos(0, 0), End: pos(0, 0)}, Replacement: "world"},
		{Range: textpos.Range{Start: pos(0, 0), End: pos(0, 0)}, Replacement: "hello "},
	}
	got := normalize(edits)
	require.Len(t, got, 1)
	require.Equal(t, "hello world", got[0].Replacement)
}

func TestSortDescendingOrdersByStartDescending(t *testing.T) {
	edits := []textpos.Edit{
		{Range: textpos.Range{Start: pos(0, 1), End: pos(0, 1)}},
		{Range: textpos.Range{Start: pos(0, 5), End: pos(0, 5)}},
		{Range: textpos.Range{Start: pos(0, 3), End: pos(0, 3)}},
	}
	got := sortDescending(edits)
	require.Equal(t, pos(0, 5), got[0].Range.Start)
	require.Equal(t, pos(0, 3), got[1].Range.Start)
	require.Equal(t, pos(0, 1), got[2].Range.Start)
}
