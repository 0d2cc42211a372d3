// Package provenance defines the closed set of provenance kinds and the
// metadata options that travel with a tagged interval.
package provenance

// Kind is the closed set of provenance tags a span of text can carry.
type Kind string

const (
	Unknown     Kind = "UNKNOWN"
	UserEdit    Kind = "USER_EDIT"
	AIGenerated Kind = "AI_GENERATED"
	UndoRedo    Kind = "UNDO_REDO"
	Paste       Kind = "PASTE"
	IDEPaste    Kind = "IDE_PASTE"
)

// Valid reports whether k is one of the closed set of kinds.
func (k Kind) Valid() bool {
	switch k {
	case Unknown, UserEdit, AIGenerated, UndoRedo, Paste, IDEPaste:
		return true
	default:
		return false
	}
}

// Options holds the optional metadata fields associated with a tagged
// interval. All fields are empty strings when absent — there is no
// pointer/omitted distinction at this layer.
type Options struct {
	PasteURL      string `json:"pasteUrl,omitempty"`
	PasteTitle    string `json:"pasteTitle,omitempty"`
	AIName        string `json:"aiName,omitempty"`
	AIModel       string `json:"aiModel,omitempty"`
	AIExplanation string `json:"aiExplanation,omitempty"`
	AIType        string `json:"aiType,omitempty"`
}
