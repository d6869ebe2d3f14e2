package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	schedulesBuiltCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "routine_engine",
		Subsystem: "scheduling",
		Name:      "schedules_built_total",
		Help:      "Number of schedules assembled from activity allocations.",
	})

	occurrencesTrimmedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "routine_engine",
		Subsystem: "scheduling",
		Name:      "occurrences_trimmed_total",
		Help:      "Number of occurrences removed to enforce the schedule budget.",
	})

	rescheduleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "routine_engine",
		Subsystem: "lifecycle",
		Name:      "reschedule_duration_seconds",
		Help:      "Time spent shifting a routine and its occurrences.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	recalculationsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "routine_engine",
		Subsystem: "lifecycle",
		Name:      "recalculations_total",
		Help:      "Number of routine aggregate recalculations performed.",
	})

	retryExhaustedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routine_engine",
		Subsystem: "store",
		Name:      "retry_exhausted_total",
		Help:      "Store operations that failed after the full retry budget, labeled by operation.",
	}, []string{"op"})

	streaksAdvancedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "routine_engine",
		Subsystem: "cadence",
		Name:      "streaks_advanced_total",
		Help:      "Number of per-region streak counters advanced.",
	})
)

func init() {
	prometheus.MustRegister(
		schedulesBuiltCounter,
		occurrencesTrimmedCounter,
		rescheduleDuration,
		recalculationsCounter,
		retryExhaustedCounter,
		streaksAdvancedCounter,
	)
}

// RecordScheduleBuilt counts one assembled schedule.
func RecordScheduleBuilt() {
	schedulesBuiltCounter.Inc()
}

// RecordOccurrencesTrimmed counts occurrences removed by the trimmer.
func RecordOccurrencesTrimmed(n int) {
	if n > 0 {
		occurrencesTrimmedCounter.Add(float64(n))
	}
}

// ObserveReschedule records the wall time of one routine reschedule.
func ObserveReschedule(d time.Duration) {
	rescheduleDuration.Observe(d.Seconds())
}

// RecordRecalculation counts one aggregate recalculation.
func RecordRecalculation() {
	recalculationsCounter.Inc()
}

// RecordRetryExhausted counts a store operation that exhausted its retries.
func RecordRetryExhausted(op string) {
	retryExhaustedCounter.WithLabelValues(op).Inc()
}

// RecordStreakAdvanced counts one streak increment.
func RecordStreakAdvanced() {
	streaksAdvancedCounter.Inc()
}
