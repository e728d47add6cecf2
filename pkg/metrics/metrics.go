package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are in milliseconds. The low end covers report reads, the
// high end a crawl step that retries a slow provider page.
var HistogramBuckets = []float64{
	10, 25, 50, 100, 250, 500,
	1000, 2500, 5000, 10000,
	30000, 60000, 120000, 300000,
}

// Collector kinds understood by NewMetric.
const (
	TypeCounterVec   = "counter_vec"
	TypeHistogramVec = "histogram_vec"
	TypeSummaryVec   = "summary_vec"
)

// RefererKey is the request header recorded in the "ref" label of HTTP metrics.
const RefererKey = "X-Referer"

// Metric describes one labelled collector; MetricCollector is set once it is registered.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric builds the collector for m, or nil for an unknown Type.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case TypeCounterVec:
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	case TypeHistogramVec:
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
			Buckets:   HistogramBuckets,
		}, m.Args)
	case TypeSummaryVec:
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	default:
		return nil
	}
}

// register adds the collector for m to reg. A collector registered earlier
// under the same description is reused, so tests and restarts in one process
// share counters instead of failing.
func register(reg prometheus.Registerer, m *Metric, subsystem string) (prometheus.Collector, error) {
	c := NewMetric(m, subsystem)
	if c == nil {
		return nil, fmt.Errorf("metric %s has unknown type %q", m.Name, m.Type)
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("failed to register metric %s: %w", m.Name, err)
		}
		c = are.ExistingCollector
	}
	m.MetricCollector = c
	return c, nil
}
