// Package persist implements the on-disk provenance log record format, its
// three storage layouts, and the checksum/path-sanitization rules around
// them. The atomic temp-file-plus-rename write in store.go follows the
// same shape as a plain diskStore save.
package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/provenance"
	"github.com/fakeyudi/tabd/internal/textpos"
)

// CurrentVersion is the only version this build writes. Older readers must
// still accept it; unknown versions are skipped with a warning.
const CurrentVersion = 1

// Record is the on-disk shape of one provenance log file.
type Record struct {
	Version  int      `json:"version"`
	Checksum string   `json:"checksum,omitempty"`
	Changes  []Change `json:"changes"`
}

// Change is one persisted TaggedInterval.
type Change struct {
	Start             textpos.Position `json:"start"`
	End               textpos.Position `json:"end"`
	Type              provenance.Kind  `json:"type"`
	CreationTimestamp int64            `json:"creationTimestamp"`
	Author            string           `json:"author,omitempty"`
	PasteURL          string           `json:"pasteUrl,omitempty"`
	PasteTitle        string           `json:"pasteTitle,omitempty"`
	AIName            string           `json:"aiName,omitempty"`
	AIModel           string           `json:"aiModel,omitempty"`
	AIExplanation     string           `json:"aiExplanation,omitempty"`
	AIType            string           `json:"aiType,omitempty"`
}

// ToChanges converts the live interval set into the persisted wire shape.
func ToChanges(items []interval.Tagged) []Change {
	out := make([]Change, 0, len(items))
	for _, it := range items {
		out = append(out, Change{
			Start:             it.Range.Start,
			End:               it.Range.End,
			Type:              it.Kind,
			CreationTimestamp: it.CreationTS,
			Author:            it.Author,
			PasteURL:          it.Options.PasteURL,
			PasteTitle:        it.Options.PasteTitle,
			AIName:            it.Options.AIName,
			AIModel:           it.Options.AIModel,
			AIExplanation:     it.Options.AIExplanation,
			AIType:            it.Options.AIType,
		})
	}
	return out
}

// FromChanges converts persisted changes back into live intervals. Entries
// whose Type isn't one of the closed set are skipped, extending the
// unknown-optional-fields tolerance to the type field.
func FromChanges(changes []Change) []interval.Tagged {
	out := make([]interval.Tagged, 0, len(changes))
	for _, c := range changes {
		kind := c.Type
		if !kind.Valid() {
			continue
		}
		out = append(out, interval.Tagged{
			Range:      textpos.Range{Start: c.Start, End: c.End},
			Kind:       kind,
			CreationTS: c.CreationTimestamp,
			Author:     c.Author,
			Options: provenance.Options{
				PasteURL:      c.PasteURL,
				PasteTitle:    c.PasteTitle,
				AIName:        c.AIName,
				AIModel:       c.AIModel,
				AIExplanation: c.AIExplanation,
				AIType:        c.AIType,
			},
		})
	}
	return out
}

// Checksum computes the advisory sha256 hex digest of a document's full
// text. It is never used to reject a load, only to flag mismatches.
func Checksum(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Marshal encodes items as a Record at CurrentVersion, with an optional
// checksum (empty docText skips the checksum field).
func Marshal(items []interval.Tagged, docText string) ([]byte, error) {
	rec := Record{
		Version: CurrentVersion,
		Changes: ToChanges(items),
	}
	if docText != "" {
		rec.Checksum = Checksum(docText)
	}
	return json.Marshal(rec)
}

// Unmarshal decodes one Record. It returns ErrUnknownVersion for any
// version other than CurrentVersion so callers can skip-with-warning as
// part of their MalformedLog handling.
func Unmarshal(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	if rec.Version != CurrentVersion {
		return Record{}, ErrUnknownVersion
	}
	return rec, nil
}
