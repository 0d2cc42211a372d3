// Package session implements the process-wide entry point that serializes
// every host event behind one exclusive lock, drives the Edit Transformer,
// Log Merger, and Edit Coalescer, and owns the ExternalHint singletons.
// State persists to one log directory per tracked document; under the
// homeDirectory storage layout that directory sits below <home>/.tabd/.
package session

import (
	"time"

	"github.com/fakeyudi/tabd/internal/hint"
	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/textpos"
)

// pasteHintTTL is how long a paste hint survives in a FileState before
// it's pruned: entries older than this are dropped on every write.
const pasteHintTTL = 400 * time.Millisecond

// pasteHint is one recently-observed paste event. It has the same fields as
// hint.PasteMarker; FileState prunes it on pasteHintTTL rather than on the
// classifier's own 200ms window.
type pasteHint struct {
	Range      textpos.Range
	CreationTS int64
}

// FileState is one open document's live provenance state: its interval
// store, recent paste hints, resolved save path, and the load-time
// watermark used to filter "new since load" at save time.
type FileState struct {
	URI           string
	RelativePath  string
	Store         []interval.Tagged
	PasteHints    []pasteHint
	LoadTimestamp int64
	loaded        bool
}

// recordPaste appends a paste hint for each range and prunes anything older
// than pasteHintTTL.
func (fs *FileState) recordPaste(ranges []textpos.Range, nowMS int64) {
	for _, r := range ranges {
		fs.PasteHints = append(fs.PasteHints, pasteHint{Range: r, CreationTS: nowMS})
	}
	fs.prunePasteHints(nowMS)
}

func (fs *FileState) prunePasteHints(nowMS int64) {
	cutoff := nowMS - pasteHintTTL.Milliseconds()
	kept := fs.PasteHints[:0]
	for _, h := range fs.PasteHints {
		if h.CreationTS > cutoff {
			kept = append(kept, h)
		}
	}
	fs.PasteHints = kept
}

// pasteMarkers converts the file state's paste hints into the classifier's
// hint.PasteMarker shape.
func (fs *FileState) pasteMarkers() []hint.PasteMarker {
	out := make([]hint.PasteMarker, len(fs.PasteHints))
	for i, h := range fs.PasteHints {
		out[i] = hint.PasteMarker{Range: h.Range, CreationTS: h.CreationTS}
	}
	return out
}
