// Package vcsnotes implements the experimental vcs-notes storage layout:
// one JSON record per save, attached as a git note to the current head
// commit, optionally pushed/fetched from origin.
package vcsnotes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/fakeyudi/tabd/internal/engineerr"
	"github.com/fakeyudi/tabd/internal/persist"
	"github.com/fakeyudi/tabd/internal/vcs"
)

// Store persists provenance log records as git notes.
type Store struct {
	Client    *vcs.Client
	AutoPush  bool
	AutoFetch bool
}

// Ref computes the notes ref name for relativePath on the given branch:
// tabd__<branch>__<sha256(sanitized-relative-path)>.
func Ref(branch, relativePath string) string {
	sum := sha256.Sum256([]byte(persist.Sanitize(relativePath)))
	return vcs.NotesRef(branch, hex.EncodeToString(sum[:]))
}

// Save appends one record's JSON as a note under this file's ref, on the
// current HEAD commit, optionally pushing it to origin.
func (s *Store) Save(ctx context.Context, relativePath string, body []byte) error {
	branch, err := s.Client.Branch(ctx)
	if err != nil {
		return &engineerr.StorageUnavailable{Layout: "vcs-notes", Err: err}
	}
	ref := Ref(branch, relativePath)

	if err := s.Client.AddNote(ctx, ref, string(body)); err != nil {
		return &engineerr.TransientExternal{Op: "vcsnotes.add", Err: err}
	}
	if s.AutoPush {
		if err := s.Client.PushNotes(ctx, ref); err != nil {
			return &engineerr.TransientExternal{Op: "vcsnotes.push", Err: err}
		}
	}
	return nil
}

// Load reads every note body under relativePath's ref, one per prior save,
// optionally fetching from origin first.
func (s *Store) Load(ctx context.Context, relativePath string) ([]string, error) {
	branch, err := s.Client.Branch(ctx)
	if err != nil {
		return nil, &engineerr.StorageUnavailable{Layout: "vcs-notes", Err: err}
	}
	ref := Ref(branch, relativePath)

	if s.AutoFetch {
		_ = s.Client.FetchNotes(ctx, ref) // best-effort; a missing remote ref isn't fatal
	}

	raw, err := s.Client.ReadNotes(ctx, ref)
	if err != nil {
		return nil, &engineerr.TransientExternal{Op: "vcsnotes.read", Err: err}
	}
	if raw == "" {
		return nil, nil
	}
	// git notes append separates successive appends with a blank line.
	return strings.Split(raw, "\n\n"), nil
}
