package tree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for tree induction.
type Metrics struct {
	Nodes               prometheus.Counter
	Leaves              prometheus.Counter
	SecondPassSplits    prometheus.Counter
	InvariantViolations prometheus.Counter
	BuildDuration       prometheus.Histogram
}

// NewMetrics creates the tree metrics and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Nodes: f.NewCounter(prometheus.CounterOpts{
			Name: "igen_tree_nodes_total",
			Help: "Total tree nodes created while building",
		}),
		Leaves: f.NewCounter(prometheus.CounterOpts{
			Name: "igen_tree_leaves_total",
			Help: "Total tree leaves created while building",
		}),
		SecondPassSplits: f.NewCounter(prometheus.CounterOpts{
			Name: "igen_tree_second_pass_splits_total",
			Help: "Splits whose variable was only found on the second selection pass",
		}),
		InvariantViolations: f.NewCounter(prometheus.CounterOpts{
			Name: "igen_tree_invariant_violations_total",
			Help: "Builds and queries aborted on an inconsistent tree or training set",
		}),
		BuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "igen_tree_build_duration_seconds",
			Help:    "Duration of tree builds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}
