// Package metrics wraps a prometheus/client_golang registry scoped to a
// single batch run. There is no HTTP exporter: the tool is a short-lived
// process, so the driver dumps a text snapshot at the end of the run
// instead of serving /metrics.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the counters and histogram for one validator run.
type Registry struct {
	reg *prometheus.Registry

	PluginsValidated prometheus.Counter
	FindingsByClass  *prometheus.CounterVec
	CloneDuration    prometheus.Histogram

	mu           sync.Mutex
	findingTotal map[string]float64
}

// New registers and returns a fresh metrics set.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		PluginsValidated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plugins_validated_total",
			Help: "Number of plugins processed in this run.",
		}),
		FindingsByClass: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plugin_findings_total",
			Help: "Plugin errors by error class (the tag before the first colon); scanner findings reported as warnings are not counted.",
		}, []string{"class"}),
		CloneDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plugin_clone_duration_seconds",
			Help:    "Wall-clock time spent cloning a plugin repository.",
			Buckets: prometheus.DefBuckets,
		}),
		findingTotal: map[string]float64{},
	}
	reg.MustRegister(r.PluginsValidated, r.FindingsByClass, r.CloneDuration)
	return r
}

// ObserveFinding increments the finding counter for class and tracks a
// running total for the text summary.
func (r *Registry) ObserveFinding(class string) {
	r.FindingsByClass.WithLabelValues(class).Inc()
	r.mu.Lock()
	r.findingTotal[class]++
	r.mu.Unlock()
}

// Summary renders a short text snapshot of the run's counters, placed
// after the totals of the human-readable report and before any
// remediation hints.
func (r *Registry) Summary() string {
	mfs, err := r.reg.Gather()
	if err != nil {
		return fmt.Sprintf("metrics: failed to gather: %v", err)
	}

	var b strings.Builder
	b.WriteString("metrics:\n")
	for _, mf := range mfs {
		switch mf.GetName() {
		case "plugins_validated_total":
			for _, m := range mf.GetMetric() {
				fmt.Fprintf(&b, "  plugins_validated_total: %.0f\n", m.GetCounter().GetValue())
			}
		case "plugin_clone_duration_seconds":
			for _, m := range mf.GetMetric() {
				h := m.GetHistogram()
				fmt.Fprintf(&b, "  plugin_clone_duration_seconds: count=%d sum=%.3f\n", h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}

	r.mu.Lock()
	classes := make([]string, 0, len(r.findingTotal))
	for c := range r.findingTotal {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	for _, c := range classes {
		fmt.Fprintf(&b, "  plugin_findings_total{class=%q}: %.0f\n", c, r.findingTotal[c])
	}
	r.mu.Unlock()

	return b.String()
}
