// Package editreason names the small closed set of reasons a host attaches
// to an edit batch via the `reason` parameter on each apply call.
package editreason

// Reason is the host-supplied classification hint for one edit batch.
type Reason string

const (
	None        Reason = ""
	Undo        Reason = "UNDO"
	Redo        Reason = "REDO"
	Paste       Reason = "PASTE"
	IDEPaste    Reason = "IDE_PASTE"
	AIGenerated Reason = "AI_GENERATED"
)
