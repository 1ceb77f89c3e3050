package vectorstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type storeMetrics struct {
	// Labels: operation (add, search), result (success, error)
	operationDuration *prometheus.HistogramVec
	documentsAdded    prometheus.Counter
}

// newStoreMetrics creates the store collectors. A nil registerer leaves them
// unregistered.
func newStoreMetrics(reg prometheus.Registerer) *storeMetrics {
	factory := promauto.With(reg)
	return &storeMetrics{
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "strategist",
				Subsystem: "vectorstore",
				Name:      "operation_duration_seconds",
				Help:      "Duration of vector store operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "result"},
		),
		documentsAdded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "strategist",
				Subsystem: "vectorstore",
				Name:      "documents_added_total",
				Help:      "Total number of documents added to the vector store",
			},
		),
	}
}

// recordOperation records the outcome and latency of a store operation.
func (m *storeMetrics) recordOperation(operation string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.operationDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
}
