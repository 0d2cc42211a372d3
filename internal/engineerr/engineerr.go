// Package engineerr defines the closed set of error kinds the engine can
// produce: each wraps an underlying cause and is distinguished with
// errors.As, following the same sentinel+wrapper shape as config.ParseError.
package engineerr

import "fmt"

// TransientExternal wraps a helper/VCS timeout or non-zero exit. The caller
// treats the operation as having produced absent metadata; it never fails
// the edit.
type TransientExternal struct {
	Op  string
	Err error
}

func (e *TransientExternal) Error() string {
	return fmt.Sprintf("transient external failure during %s: %v", e.Op, e.Err)
}

func (e *TransientExternal) Unwrap() error { return e.Err }

// MalformedLog wraps a JSON parse failure, wrong shape, or unknown version
// encountered while loading a persisted log entry. The caller skips that
// entry and continues with the rest.
type MalformedLog struct {
	Path string
	Err  error
}

func (e *MalformedLog) Error() string {
	return fmt.Sprintf("malformed log entry %s: %v", e.Path, e.Err)
}

func (e *MalformedLog) Unwrap() error { return e.Err }

// InvariantViolation wraps a fatal-for-this-save-attempt condition, such as
// a duplicate-file-record path collision. In-memory state is preserved; the
// save attempt is surfaced to the user.
type InvariantViolation struct {
	Reason string
	Err    error
}

func (e *InvariantViolation) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invariant violation: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invariant violation: %s", e.Reason)
}

func (e *InvariantViolation) Unwrap() error { return e.Err }

// StorageUnavailable wraps a missing workspace or missing VCS when the
// configured storage layout requires one. Save becomes a no-op with a
// warning; live tracking is unaffected.
type StorageUnavailable struct {
	Layout string
	Err    error
}

func (e *StorageUnavailable) Error() string {
	return fmt.Sprintf("storage layout %q unavailable: %v", e.Layout, e.Err)
}

func (e *StorageUnavailable) Unwrap() error { return e.Err }
