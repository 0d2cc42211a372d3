// Package classify implements the Provenance Classifier's decision table:
// mapping one edit, a recent-paste hint set, the recent-AI hint, and a
// host-supplied reason to a provenance tag plus metadata.
package classify

import (
	"strings"

	"github.com/fakeyudi/tabd/internal/docref"
	"github.com/fakeyudi/tabd/internal/editreason"
	"github.com/fakeyudi/tabd/internal/hint"
	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/provenance"
	"github.com/fakeyudi/tabd/internal/textpos"
)

// PasteHintWindowMS is the window within which a paste hint at the same
// start position reclassifies an edit as a paste.
const PasteHintWindowMS = 200

// ClipboardMatchWindowMS is the window within which a clipboard hint's text
// match is trusted for paste resolution.
const ClipboardMatchWindowMS = 3600_000

// AIRecentWindowMS is the default AI-match freshness window.
const AIRecentWindowMS = 2000

// AIInlineCompletionWindowMS is the extended freshness window granted to
// inlineCompletion AI hints.
const AIInlineCompletionWindowMS = 5 * 60 * 1000

// VCSContext supplies the already-resolved repository facts needed to
// finish an IDE-paste resolution (remote URL, branch). Classify never runs
// git itself — that's the Session Coordinator's job, run outside the hot
// edit-batch path.
type VCSContext struct {
	RemoteHTTPSURL string
	Branch         string
}

// Outcome is what Classify decided for one edit.
type Outcome struct {
	// Interval is the new interval to emit, or nil if none.
	Interval *interval.Tagged
	// ResolvedReason is the reason after any paste reclassification.
	ResolvedReason editreason.Reason
	// ClearAI signals the caller should schedule clearing lastAICommand.
	ClearAI bool
	// DerivedEdit is set only by the before-tool branch: the classifier
	// emits no interval for the current edit and instead hands back a
	// synthetic edit to store as the pending AI edit batch.
	DerivedEdit *textpos.Edit
}

// Classify implements the decision table for one edit within an apply()
// call. now is ms since epoch; author is the local user's identity for
// UserEdit intervals.
func Classify(
	e textpos.Edit,
	reason editreason.Reason,
	pasteHints []hint.PasteMarker,
	hints *hint.Store,
	vcsCtx VCSContext,
	now int64,
	author string,
	doc docref.DocumentRef,
) Outcome {
	// Step 1: reclassify paste from a recent same-start paste hint.
	for _, ph := range pasteHints {
		if ph.Range.Start == e.Range.Start && ph.CreationTS > now-PasteHintWindowMS {
			reason = editreason.Paste
			break
		}
	}

	var aiInfo *hint.AICommand
	if hints != nil {
		aiInfo = hints.LastAICommand
	}

	// Special before-tool branch takes precedence over the rest of the
	// table: the raw edit's shape isn't trustworthy provenance-wise when an
	// AI tool is mid-invocation of an insert/replace-string tool.
	if aiInfo != nil && aiInfo.IsBeforeTool() {
		derived := deriveEdit(*aiInfo)
		return Outcome{ResolvedReason: reason, DerivedEdit: &derived}
	}

	text := e.Replacement
	trimmed := strings.TrimSpace(text)

	switch {
	case reason == editreason.Paste || reason == editreason.IDEPaste:
		iv, resolvedReason := resolvePaste(e, reason, trimmed, hints, vcsCtx, now, author, doc)
		return Outcome{Interval: iv, ResolvedReason: resolvedReason}

	case reason == editreason.AIGenerated:
		iv := aiInterval(e, aiInfo, now, doc)
		return Outcome{Interval: iv, ResolvedReason: reason, ClearAI: true}

	case reason == editreason.Undo || reason == editreason.Redo:
		iv := &interval.Tagged{Range: e.Range, Kind: provenance.UndoRedo, CreationTS: now}
		return Outcome{Interval: iv, ResolvedReason: reason}

	case len(trimmed) <= 1 && !isBeforeAfterToolType(aiInfo):
		iv := &interval.Tagged{
			Range:      textpos.Range{Start: e.Range.Start, End: endOfInsert(e, doc)},
			Kind:       provenance.UserEdit,
			CreationTS: now,
			Author:     author,
		}
		return Outcome{Interval: iv, ResolvedReason: reason}

	default:
		iv, clearAI := aiMatchBranch(e, trimmed, aiInfo, now, doc)
		return Outcome{Interval: iv, ResolvedReason: reason, ClearAI: clearAI}
	}
}

// isBeforeAfterToolType reports whether aiInfo carries one of the AI
// "before/after-tool" types, which suppresses the plain-UserEdit shortcut
// even for a single-character edit.
func isBeforeAfterToolType(aiInfo *hint.AICommand) bool {
	if aiInfo == nil {
		return false
	}
	return aiInfo.IsBeforeTool() || aiInfo.IsTerminalAfterTool()
}

// resolvePaste implements the paste-resolution branch.
func resolvePaste(
	e textpos.Edit,
	reason editreason.Reason,
	trimmed string,
	hints *hint.Store,
	vcsCtx VCSContext,
	now int64,
	author string,
	doc docref.DocumentRef,
) (*interval.Tagged, editreason.Reason) {
	opts := provenance.Options{}
	resolvedReason := reason

	if hints != nil && hints.LastClipboard != nil {
		cb := hints.LastClipboard
		if strings.TrimSpace(cb.Text) == trimmed && cb.TimestampMS > now-ClipboardMatchWindowMS {
			switch cb.Kind {
			case hint.IDEClipboardCopy:
				resolvedReason = editreason.IDEPaste
				opts.PasteURL = vcsCtx.RemoteHTTPSURL
				opts.PasteTitle = cb.RelativePath
				if vcsCtx.Branch != "" && vcsCtx.Branch != "main" && vcsCtx.Branch != "master" {
					opts.PasteTitle += " (on branch " + vcsCtx.Branch + ")"
				}
			case hint.ClipboardCopy:
				opts.PasteURL = cb.URL
				opts.PasteTitle = cb.Title
			}
		}
	}

	kind := provenance.Paste
	if resolvedReason == editreason.IDEPaste {
		kind = provenance.IDEPaste
	}

	end := endOfInsert(e, doc)
	return &interval.Tagged{
		Range:      textpos.Range{Start: e.Range.Start, End: end},
		Kind:       kind,
		CreationTS: now,
		Author:     author,
		Options:    opts,
	}, resolvedReason
}

// aiInterval builds the AIGenerated interval for an explicit
// reason=AIGenerated edit batch, sourcing metadata directly from aiInfo
// without running the match heuristics.
func aiInterval(e textpos.Edit, aiInfo *hint.AICommand, now int64, doc docref.DocumentRef) *interval.Tagged {
	opts := provenance.Options{}
	if aiInfo != nil {
		opts = provenance.Options{
			AIName:        aiInfo.ExtensionName,
			AIModel:       aiInfo.ModelID,
			AIExplanation: aiInfo.Explanation,
			AIType:        aiInfo.ToolName(),
		}
	}
	end := endOfInsert(e, doc)
	return &interval.Tagged{
		Range:      textpos.Range{Start: e.Range.Start, End: end},
		Kind:       provenance.AIGenerated,
		CreationTS: now,
		Options:    opts,
	}
}

// aiMatchBranch implements the AI-matching branch.
func aiMatchBranch(e textpos.Edit, trimmed string, aiInfo *hint.AICommand, now int64, doc docref.DocumentRef) (*interval.Tagged, bool) {
	if aiInfo == nil || aiInfo.InsertText == "" {
		return nil, false
	}
	if !strings.Contains(strings.TrimSpace(aiInfo.InsertText), trimmed) {
		return nil, false
	}
	fresh := aiInfo.TimestampMS > now-AIRecentWindowMS
	freshInline := aiInfo.Type == hint.TypeInlineCompletion && aiInfo.TimestampMS > now-AIInlineCompletionWindowMS
	if !fresh && !freshInline {
		return nil, false
	}
	if aiInfo.Range != nil && aiInfo.Range.Start != e.Range.Start {
		return nil, false
	}

	end := endOfInsert(e, doc)
	iv := &interval.Tagged{
		Range:      textpos.Range{Start: e.Range.Start, End: end},
		Kind:       provenance.AIGenerated,
		CreationTS: now,
		Options: provenance.Options{
			AIName:        aiInfo.ExtensionName,
			AIModel:       aiInfo.ModelID,
			AIExplanation: aiInfo.Explanation,
			AIType:        aiInfo.ToolName(),
		},
	}
	return iv, aiInfo.IsTerminalAfterTool()
}

// endOfInsert computes positionAt(offsetAt(e.Range.Start) + len(text)), the
// end of the newly inserted span.
func endOfInsert(e textpos.Edit, doc docref.DocumentRef) textpos.Position {
	startOffset := doc.OffsetAt(e.Range.Start)
	return doc.PositionAt(startOffset + len(e.Replacement))
}

// deriveEdit implements the before-tool branch's derived-edit synthesis:
// compute the common-prefix/suffix offsets of InsertText against OldText to
// find the minimal net-new insertion, anchored at aiInfo.Range.Start (or the
// document origin if no range was supplied).
func deriveEdit(aiInfo hint.AICommand) textpos.Edit {
	anchor := textpos.Position{}
	if aiInfo.Range != nil {
		anchor = aiInfo.Range.Start
	}

	prefixLen := commonPrefixLen(aiInfo.OldText, aiInfo.InsertText)
	suffixLen := commonSuffixLen(aiInfo.OldText[prefixLen:], aiInfo.InsertText[prefixLen:])
	trimmedInsert := aiInfo.InsertText[prefixLen : len(aiInfo.InsertText)-suffixLen]

	// The anchor's column advances by prefixLen characters on the same
	// line as long as the common prefix contains no newline; a prefix that
	// does isn't expected in this heuristic (insertText/oldText for a
	// tool-suggested edit are single spans), so this stays a column shift.
	pos := anchor
	pos.Column += prefixLen

	return textpos.Edit{
		Range:       textpos.Range{Start: pos, End: pos},
		Replacement: trimmedInsert,
	}
}

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}
