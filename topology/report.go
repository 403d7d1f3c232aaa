package topology

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"
)

// Metric names, in report order.
const (
	KeyNumNodes         = "num_nodes"
	KeyMaxPeers         = "max_peers"
	KeyMinPeers         = "min_peers"
	KeyAvgPeers         = "avg_peers"
	KeyAvgShortestPath  = "avg_shortest_path"
	KeyRSDShortestPath  = "rsd_shortest_path"
	KeyMinCloseness     = "min_closeness_centrality"
	KeyAvgCloseness     = "avg_closeness_centrality"
	KeyRSDCloseness     = "rsd_closeness_centrality"
	KeyMinLoad          = "min_load_centrality"
	KeyMaxLoad          = "max_load_centrality"
	KeyAvgLoad          = "avg_load_centrality"
	KeyRSDLoad          = "rsd_load_centrality"
	KeyEdgeConnectivity = "edge_connectivity"
	KeyDiameter         = "diameter"
	KeyError            = "ERROR"
)

// ErrorValue is recorded under KeyError when any computation failed.
const ErrorValue = -1

// Metric is a named value. Integer metrics print without decimals.
type Metric struct {
	Name    string
	Value   float64
	Integer bool
}

func (m Metric) String() string {
	if m.Integer {
		return strconv.FormatInt(int64(m.Value), 10)
	}
	return fmt.Sprintf("%.4f", m.Value)
}

// Report is an insertion-ordered set of metrics plus the errors met while
// computing them.
type Report struct {
	metrics []Metric
	index   map[string]int
	errs    []error
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{index: make(map[string]int)}
}

func (r *Report) set(m Metric) {
	if i, ok := r.index[m.Name]; ok {
		r.metrics[i] = m
		return
	}
	r.index[m.Name] = len(r.metrics)
	r.metrics = append(r.metrics, m)
}

// SetInt records an integer metric.
func (r *Report) SetInt(name string, v int) {
	r.set(Metric{Name: name, Value: float64(v), Integer: true})
}

// SetFloat records a real-valued metric.
func (r *Report) SetFloat(name string, v float64) {
	r.set(Metric{Name: name, Value: v})
}

// Fail records err and sets the ERROR sentinel.
func (r *Report) Fail(err error) {
	r.errs = append(r.errs, err)
	r.SetInt(KeyError, ErrorValue)
}

// Get returns the metric stored under name.
func (r *Report) Get(name string) (Metric, bool) {
	i, ok := r.index[name]
	if !ok {
		return Metric{}, false
	}
	return r.metrics[i], true
}

// Value returns the value stored under name.
func (r *Report) Value(name string) (float64, bool) {
	m, ok := r.Get(name)
	return m.Value, ok
}

// Metrics returns the metrics in insertion order.
func (r *Report) Metrics() []Metric {
	out := make([]Metric, len(r.metrics))
	copy(out, r.metrics)
	return out
}

// Keys returns the metric names in insertion order.
func (r *Report) Keys() []string {
	keys := make([]string, len(r.metrics))
	for i, m := range r.metrics {
		keys[i] = m.Name
	}
	return keys
}

// Errors returns every failure recorded while analysing.
func (r *Report) Errors() []error {
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

// Err combines the recorded failures, or returns nil.
func (r *Report) Err() error {
	return multierr.Combine(r.errs...)
}

// Failed reports whether the ERROR sentinel is set.
func (r *Report) Failed() bool {
	_, ok := r.index[KeyError]
	return ok
}
