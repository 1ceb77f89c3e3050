package strategist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure stages.
const (
	stageRetrieval  = "retrieval"
	stageGeneration = "generation"
)

type metrics struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	entries  prometheus.Gauge
	failures *prometheus.CounterVec
}

// newMetrics creates the cache collectors. A nil registerer leaves them
// unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "strategist",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Strategy requests answered from the cache",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "strategist",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Strategy requests that required retrieval and generation",
		}),
		entries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "strategist",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Strategies currently cached",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strategist",
			Name:      "generation_failures_total",
			Help:      "Strategy computations that failed, by pipeline stage",
		}, []string{"stage"}),
	}
}
