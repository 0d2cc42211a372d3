package telemetry

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/tabd/internal/engineerr"
)

func TestDiscardLoggerNeverPanics(t *testing.T) {
	l := Discard()
	l.TransientExternal(&engineerr.TransientExternal{Op: "vcs.branch", Err: errors.New("boom")})
	l.MalformedLog(&engineerr.MalformedLog{Path: "x.json", Err: errors.New("boom")})
	l.InvariantViolation(&engineerr.InvariantViolation{Reason: "dup"})
	l.StorageUnavailable(&engineerr.StorageUnavailable{Layout: "repository", Err: errors.New("boom")})
	l.ClassifierPanic("recovered value")
	l.EditBatch("file:///a.go", time.Millisecond, map[string]int{"USER_EDIT": 1})
	l.MergeConflict()
}

func TestNilLoggerNeverPanics(t *testing.T) {
	var l *Logger
	l.TransientExternal(&engineerr.TransientExternal{Op: "vcs.branch", Err: errors.New("boom")})
}

func TestNewLoggerWritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.WarnLevel)

	l.TransientExternal(&engineerr.TransientExternal{Op: "vcs.branch", Err: errors.New("timed out")})

	require.Contains(t, buf.String(), `"op":"vcs.branch"`)
	require.Contains(t, buf.String(), "transient external failure")
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.ErrorLevel)

	l.TransientExternal(&engineerr.TransientExternal{Op: "vcs.branch", Err: errors.New("timed out")})

	require.Empty(t, buf.String(), "Warn-level entry should be suppressed above the Error threshold")
}
