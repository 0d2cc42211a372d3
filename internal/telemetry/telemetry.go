// Package telemetry wraps the engine's structured logging (zerolog) and
// metrics (prometheus client). Every Session Coordinator entry point that
// logs an error routes through the Logger here.
package telemetry

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/tabd/internal/engineerr"
)

// Logger wraps a zerolog.Logger with a small vocabulary of engine events.
// A zero-value Logger (nil underlying writer) discards everything,
// so components can accept *Logger without a nil check at every call site.
type Logger struct {
	log zerolog.Logger
}

// New builds a Logger writing to w at the given level. Pass io.Discard for
// a silent logger (the default in tests).
func New(w io.Writer, level zerolog.Level) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{log: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Discard returns a Logger that drops everything, for callers (tests, or
// hosts that haven't wired a sink yet) that don't want output.
func Discard() *Logger {
	return New(io.Discard, zerolog.Disabled)
}

func (l *Logger) logger() *zerolog.Logger {
	if l == nil {
		discard := zerolog.New(io.Discard).Level(zerolog.Disabled)
		return &discard
	}
	return &l.log
}

// TransientExternal logs a TransientExternal condition: a helper/VCS call
// timed out or exited non-zero. Metadata degrades to empty; the edit is
// never failed because of this.
func (l *Logger) TransientExternal(err *engineerr.TransientExternal) {
	l.logger().Warn().Str("op", err.Op).Err(err.Err).Msg("transient external failure, degrading metadata")
	transientExternalTotal.WithLabelValues(err.Op).Inc()
}

// MalformedLog logs a MalformedLog condition: a persisted entry couldn't
// be parsed and is skipped.
func (l *Logger) MalformedLog(err *engineerr.MalformedLog) {
	l.logger().Warn().Str("path", err.Path).Err(err.Err).Msg("skipping malformed log entry")
	malformedLogTotal.Inc()
}

// InvariantViolation logs an InvariantViolation: fatal for the current
// save attempt only, in-memory state untouched.
func (l *Logger) InvariantViolation(err *engineerr.InvariantViolation) {
	l.logger().Error().Str("reason", err.Reason).Err(err.Err).Msg("invariant violation, save attempt aborted")
	invariantViolationTotal.Inc()
}

// StorageUnavailable logs a StorageUnavailable condition: save became a
// no-op, live tracking continues.
func (l *Logger) StorageUnavailable(err *engineerr.StorageUnavailable) {
	l.logger().Warn().Str("layout", err.Layout).Err(err.Err).Msg("storage unavailable, save is a no-op")
	storageUnavailableTotal.WithLabelValues(err.Layout).Inc()
}

// ClassifierPanic logs a recovered panic from the Provenance Classifier: the
// edit batch is still folded, just without AI metadata.
func (l *Logger) ClassifierPanic(recovered any) {
	l.logger().Error().Interface("recovered", recovered).Msg("classifier panic recovered, folding edit without AI metadata")
	classifierPanicTotal.Inc()
}

// EditBatch records a completed onEditBatch call's latency and the
// provenance kinds it produced, for the debug metrics endpoint.
func (l *Logger) EditBatch(uri string, dur time.Duration, kinds map[string]int) {
	editBatchDuration.Observe(dur.Seconds())
	for kind, n := range kinds {
		for i := 0; i < n; i++ {
			classifierOutcomeTotal.WithLabelValues(kind).Inc()
		}
	}
	l.logger().Debug().Str("uri", uri).Dur("duration", dur).Interface("kinds", kinds).Msg("edit batch applied")
}

// MergeConflict records that the Log Merger had to trim or drop an
// interval to resolve a timestamp tie-break.
func (l *Logger) MergeConflict() {
	mergeConflictTotal.Inc()
}
