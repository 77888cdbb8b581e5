package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics exported under the hoopstat namespace.
var (
	RecordsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hoopstat",
		Subsystem: "pipeline",
		Name:      "records_processed_total",
		Help:      "Records processed, labeled by entity and outcome (valid, invalid, rejected).",
	}, []string{"entity", "outcome"})

	QuarantineWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hoopstat",
		Subsystem: "pipeline",
		Name:      "quarantine_writes_total",
		Help:      "Quarantine write attempts, labeled by entity and result (ok, failed).",
	}, []string{"entity", "result"})

	BatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hoopstat",
		Subsystem: "pipeline",
		Name:      "batch_duration_seconds",
		Help:      "Wall-clock duration of one pipeline run.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"entity"})

	QualityScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hoopstat",
		Subsystem: "pipeline",
		Name:      "quality_score",
		Help:      "Overall quality score distribution for scored records.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	}, []string{"entity"})

	StorageWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hoopstat",
		Subsystem: "pipeline",
		Name:      "storage_writes_total",
		Help:      "Gold-layer storage writes, labeled by entity and result (ok, failed).",
	}, []string{"entity", "result"})
)
