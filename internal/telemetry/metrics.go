package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics are package-level (like the prometheus client's own idiom) so
// every Logger instance in a process shares one registry. Register attaches
// them to reg; call it once from `tabd serve-metrics` (they're otherwise
// unregistered and simply accumulate in memory, unused).
var (
	transientExternalTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tabd_transient_external_total",
		Help: "Count of TransientExternal failures (helper/VCS timeout or non-zero exit), by operation.",
	}, []string{"op"})

	malformedLogTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tabd_malformed_log_total",
		Help: "Count of persisted log entries skipped for being malformed.",
	})

	invariantViolationTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tabd_invariant_violation_total",
		Help: "Count of save attempts aborted due to an invariant violation.",
	})

	storageUnavailableTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tabd_storage_unavailable_total",
		Help: "Count of no-op saves due to storage unavailability, by layout.",
	}, []string{"layout"})

	classifierPanicTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tabd_classifier_panic_recovered_total",
		Help: "Count of recovered panics from the provenance classifier.",
	})

	classifierOutcomeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tabd_classifier_outcome_total",
		Help: "Count of emitted intervals by provenance kind.",
	}, []string{"kind"})

	editBatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tabd_edit_batch_duration_seconds",
		Help:    "Latency of a single onEditBatch call.",
		Buckets: prometheus.DefBuckets,
	})

	mergeConflictTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tabd_merge_conflict_total",
		Help: "Count of timestamp tie-breaks resolved by the Log Merger.",
	})
)

// Register attaches all engine metrics to reg. Safe to call once per
// process; a second registration attempt against the same registry returns
// an error from the registerer, which callers may ignore in tests.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		transientExternalTotal,
		malformedLogTotal,
		invariantViolationTotal,
		storageUnavailableTotal,
		classifierPanicTotal,
		classifierOutcomeTotal,
		editBatchDuration,
		mergeConflictTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
