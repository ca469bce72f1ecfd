package app

import (
	"time"

	"coinbt/internal/sweep"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coinbt",
		Subsystem: "source",
		Name:      "fetch_duration_seconds",
		Help:      "Price history fetch latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"source", "status"})

	sweepCombinations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coinbt",
		Subsystem: "sweep",
		Name:      "combinations_total",
		Help:      "Total parameter combinations evaluated",
	})

	sweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coinbt",
		Subsystem: "sweep",
		Name:      "runs_total",
		Help:      "Total sweeps by outcome",
	}, []string{"status"})

	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coinbt",
		Subsystem: "sweep",
		Name:      "duration_seconds",
		Help:      "Wall time of a full parameter sweep",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	})
)

func observeFetch(source string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	fetchDuration.WithLabelValues(source, status).Observe(time.Since(start).Seconds())
}

func observeSweep(stats sweep.Stats, err error) {
	sweepCombinations.Add(float64(stats.Emitted))
	sweepDuration.Observe(stats.Elapsed.Seconds())
	status := "done"
	if err != nil {
		status = "failed"
	}
	sweepRuns.WithLabelValues(status).Inc()
}
