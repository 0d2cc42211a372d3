// Package hint models the ephemeral, process-wide ExternalHint state: the
// last observed clipboard copy and the last AI-tool command envelope, plus
// the short-lived paste-hint markers a SessionFileState carries.
package hint

import (
	"github.com/fakeyudi/tabd/internal/textpos"
)

// ClipboardKind distinguishes a plain OS clipboard copy from one captured by
// the in-IDE clipboard path (which carries VCS-derived url/title instead of
// a browser source).
type ClipboardKind string

const (
	ClipboardCopy    ClipboardKind = "clipboard_copy"
	IDEClipboardCopy ClipboardKind = "ide_clipboard_copy"
)

// Clipboard is the last observed clipboard-copy event.
type Clipboard struct {
	Text          string
	TimestampMS   int64
	Kind          ClipboardKind
	URL           string
	Title         string
	WorkspacePath string
	RelativePath  string
}

// AICommandType is the opaque `_type` discriminator on an AI command
// envelope. Only the values the classifier inspects are named; any other
// string is passed through untouched.
type AICommandType string

const (
	TypeInlineCompletion          AICommandType = "inlineCompletion"
	TypePostInsertEdit            AICommandType = "postInsertEdit"
	TypeCreateFile                AICommandType = "createFile"
	TypeOnBeforeInsertEditTool    AICommandType = "onBeforeInsertEditTool"
	TypeOnBeforeReplaceStringTool AICommandType = "onBeforeReplaceStringTool"
	TypeOnAfterInsertEditTool     AICommandType = "onAfterInsertEditTool"
	TypeOnAfterReplaceStringTool  AICommandType = "onAfterReplaceStringTool"
	TypeOnAfterApplyPatchTool     AICommandType = "onAfterApplyPatchTool"
	TypeOnAfterCreateFileTool     AICommandType = "onAfterCreateFileTool"
)

// AICommand is the last AI-tool invocation envelope (lastAICommand).
type AICommand struct {
	Type            AICommandType
	TimestampMS     int64
	InsertText      string
	OldText         string
	Range           *textpos.Range // nil when the tool didn't supply one
	ModelID         string
	ExtensionName   string
	Explanation     string
	Command         string
	Document        string // companion document URI, for postInsertEdit replay
}

// terminalAfterToolTypes are the "after-tool" envelope kinds that mark the
// end of an AI edit's lifecycle: once one arrives, the classifier schedules
// clearAI.
var terminalAfterToolTypes = map[AICommandType]bool{
	TypeOnAfterInsertEditTool:    true,
	TypeOnAfterReplaceStringTool: true,
	TypeOnAfterApplyPatchTool:    true,
	TypeOnAfterCreateFileTool:    true,
}

// IsTerminalAfterTool reports whether c marks the end of an AI-tool edit.
func (c AICommand) IsTerminalAfterTool() bool {
	return terminalAfterToolTypes[c.Type]
}

// beforeToolTypes are the "before-tool" envelope kinds that suppress interval
// emission for the current edit and instead synthesize a derived edit.
var beforeToolTypes = map[AICommandType]bool{
	TypeOnBeforeInsertEditTool:    true,
	TypeOnBeforeReplaceStringTool: true,
}

// IsBeforeTool reports whether c is a before-tool envelope.
func (c AICommand) IsBeforeTool() bool {
	return beforeToolTypes[c.Type]
}

// toolNameByType maps an AI command's `_type` to the human-facing tool name
// stored in a TaggedInterval's Options.AIType.
var toolNameByType = map[AICommandType]string{
	TypeOnBeforeInsertEditTool:    "insertEdit",
	TypeOnAfterInsertEditTool:     "insertEdit",
	TypeOnBeforeReplaceStringTool: "replaceString",
	TypeOnAfterReplaceStringTool:  "replaceString",
	TypeOnAfterApplyPatchTool:     "applyPatch",
	TypeOnAfterCreateFileTool:     "createFile",
}

// ToolName resolves c's `_type` to the classifier's aiType vocabulary,
// falling back to the raw type string for anything not in the map (e.g.
// inlineCompletion, which has no before/after-tool pairing).
func (c AICommand) ToolName() string {
	if name, ok := toolNameByType[c.Type]; ok {
		return name
	}
	return string(c.Type)
}

// PasteMarker is a short-lived hint deposited by the host's paste path,
// consumed by the classifier within its 200ms freshness window.
type PasteMarker struct {
	Range      textpos.Range
	CreationTS int64
}

// Store holds the process-wide ExternalHint singletons. Access is confined
// to the Session Coordinator, which owns the process-exclusive lock under
// which every read and write happens.
type Store struct {
	LastClipboard *Clipboard
	LastAICommand *AICommand
}
