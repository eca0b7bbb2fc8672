// Package metric holds the Prometheus metrics of crosswalk engine operations.
package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/crosswalk/graph"
)

const namespace = "crosswalk"

// Metrics records engine activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	inserted   prometheus.Counter
	rejected   prometheus.Counter
	merged     *prometheus.CounterVec // By outcome (merged/superseded/remapped)
	skolemized prometheus.Counter

	frameDuration prometheus.Histogram
}

var _ graph.InsertObserver = (*Metrics)(nil)

// New creates the metrics and registers them with reg. A nil reg returns nil
// metrics, which disables recording.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil // Metrics disabled
	}

	m := &Metrics{
		inserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_inserted_total",
			Help:      "Total number of triples added through the insertion policy",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_rejected_total",
			Help:      "Total number of insert calls rejected for an unknown predicate",
		}),
		merged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_triples_total",
			Help:      "Triples handled by graph merges, by outcome",
		}, []string{"outcome"}),
		skolemized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skolemized_nodes_total",
			Help:      "Total number of blank nodes replaced by stable URIs",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Duration of framing one root resource",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
	}

	for _, c := range []prometheus.Collector{m.inserted, m.rejected, m.merged, m.skolemized, m.frameDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register crosswalk metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveInsert implements graph.InsertObserver.
func (m *Metrics) ObserveInsert(_ string, added int) {
	if m == nil || added == 0 {
		return
	}
	m.inserted.Add(float64(added))
}

// ObserveReject implements graph.InsertObserver.
func (m *Metrics) ObserveReject(string) {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

// RecordMerge records the outcome counts of one merge.
func (m *Metrics) RecordMerge(stats graph.MergeStats) {
	if m == nil {
		return
	}
	m.merged.WithLabelValues("merged").Add(float64(stats.Merged))
	m.merged.WithLabelValues("superseded").Add(float64(stats.Superseded))
	m.merged.WithLabelValues("remapped").Add(float64(stats.Remapped))
}

// RecordSkolemize records the number of blank nodes rewritten.
func (m *Metrics) RecordSkolemize(n int) {
	if m == nil {
		return
	}
	m.skolemized.Add(float64(n))
}

// RecordFrame records how long framing took.
func (m *Metrics) RecordFrame(d time.Duration) {
	if m == nil {
		return
	}
	m.frameDuration.Observe(d.Seconds())
}
