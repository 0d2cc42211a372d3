// Package docref defines the offset/position oracle capability the engine
// requires from the host, plus an in-memory implementation for tests.
package docref

import (
	"strings"

	"github.com/fakeyudi/tabd/internal/textpos"
)

// DocumentRef is the capability the host exposes for one open document. The
// engine never reimplements a text index; it only consumes this interface.
type DocumentRef interface {
	OffsetAt(p textpos.Position) int
	PositionAt(offset int) textpos.Position
	LineText(line int) string
	URI() string
	LineCount() int
}

// Rope is a minimal in-memory DocumentRef backed by a line slice, used by
// tests in place of a real editor buffer.
type Rope struct {
	uri   string
	lines []string
}

// NewRope builds a Rope from the full document text.
func NewRope(uri, text string) *Rope {
	return &Rope{uri: uri, lines: splitKeepingEmpty(text)}
}

func splitKeepingEmpty(text string) []string {
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}

// URI implements DocumentRef.
func (r *Rope) URI() string { return r.uri }

// LineCount implements DocumentRef.
func (r *Rope) LineCount() int { return len(r.lines) }

// LineText implements DocumentRef.
func (r *Rope) LineText(line int) string {
	if line < 0 || line >= len(r.lines) {
		return ""
	}
	return r.lines[line]
}

// OffsetAt implements DocumentRef, converting a position into a byte offset
// into the full document text (lines joined by '\n').
func (r *Rope) OffsetAt(p textpos.Position) int {
	offset := 0
	for i := 0; i < p.Line && i < len(r.lines); i++ {
		offset += len(r.lines[i]) + 1 // +1 for the newline
	}
	if p.Line < len(r.lines) {
		col := p.Column
		if col > len(r.lines[p.Line]) {
			col = len(r.lines[p.Line])
		}
		offset += col
	}
	return offset
}

// PositionAt implements DocumentRef, converting a byte offset back into a
// position.
func (r *Rope) PositionAt(offset int) textpos.Position {
	line := 0
	for line < len(r.lines) {
		lineLen := len(r.lines[line])
		if offset <= lineLen {
			return textpos.Position{Line: line, Column: offset}
		}
		offset -= lineLen + 1
		line++
	}
	if len(r.lines) == 0 {
		return textpos.Position{}
	}
	return textpos.Position{Line: len(r.lines) - 1, Column: len(r.lines[len(r.lines)-1])}
}

// Text returns the full document text, lines joined by '\n'.
func (r *Rope) Text() string {
	return strings.Join(r.lines, "\n")
}

// Apply mutates the rope in place by applying e, mirroring what the real
// editor buffer does when the host emits the same edit. Tests use this to
// keep a Rope in sync with a sequence of edits fed to the transformer.
func (r *Rope) Apply(e textpos.Edit) {
	startOff := r.OffsetAt(e.Range.Start)
	endOff := r.OffsetAt(e.Range.End)
	text := r.Text()
	if startOff > len(text) {
		startOff = len(text)
	}
	if endOff > len(text) {
		endOff = len(text)
	}
	newText := text[:startOff] + e.Replacement + text[endOff:]
	r.lines = splitKeepingEmpty(newText)
}
