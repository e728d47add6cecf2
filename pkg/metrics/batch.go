package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/fatflowers/hubreport/pkg/types"
)

const Subsystem = "hubreport"

var crawlSteps = &Metric{
	ID:          "crawlSteps",
	Name:        "crawl_steps_total",
	Description: "Crawled hub and date pairs, partitioned by hub and crawl status.",
	Type:        TypeCounterVec,
	Args:        []string{"hub", "status"},
}

var crawlSnapshots = &Metric{
	ID:          "crawlSnapshots",
	Name:        "crawl_snapshots_total",
	Description: "Membership snapshots seen by the transition engine, partitioned by hub and result.",
	Type:        TypeCounterVec,
	Args:        []string{"hub", "result"},
}

var aggregations = &Metric{
	ID:          "aggregations",
	Name:        "aggregations_total",
	Description: "Hub plan and month aggregations, partitioned by status.",
	Type:        TypeCounterVec,
	Args:        []string{"status"},
}

var batchDur = &Metric{
	ID:          "bpDur",
	Name:        "bp_dur",
	Description: "batch step latency in milliseconds",
	Type:        TypeHistogramVec,
	Args:        []string{"type", "subtype"},
}

// Batch holds the counters of the crawl and report pipelines.
type Batch struct {
	crawlSteps     *prometheus.CounterVec
	crawlSnapshots *prometheus.CounterVec
	aggregations   *prometheus.CounterVec
	duration       *prometheus.HistogramVec
}

func NewBatch(reg prometheus.Registerer) (*Batch, error) {
	b := &Batch{}
	for _, def := range []*Metric{crawlSteps, crawlSnapshots, aggregations, batchDur} {
		c, err := register(reg, def, Subsystem)
		if err != nil {
			return nil, err
		}
		switch def {
		case crawlSteps:
			b.crawlSteps = c.(*prometheus.CounterVec)
		case crawlSnapshots:
			b.crawlSnapshots = c.(*prometheus.CounterVec)
		case aggregations:
			b.aggregations = c.(*prometheus.CounterVec)
		case batchDur:
			b.duration = c.(*prometheus.HistogramVec)
		}
	}
	return b, nil
}

// CrawlStep records one hub and date of a crawl run.
func (b *Batch) CrawlStep(hub string, status types.CrawlStatus, processed, skipped, failed int, elapsed time.Duration) {
	b.crawlSteps.WithLabelValues(hub, string(status)).Inc()
	b.crawlSnapshots.WithLabelValues(hub, "processed").Add(float64(processed))
	b.crawlSnapshots.WithLabelValues(hub, "skipped").Add(float64(skipped))
	b.crawlSnapshots.WithLabelValues(hub, "failed").Add(float64(failed))
	b.duration.WithLabelValues("crawl", hub).Observe(float64(elapsed.Milliseconds()))
}

// Aggregation records one hub plan and month of a report run.
func (b *Batch) Aggregation(status string, elapsed time.Duration) {
	b.aggregations.WithLabelValues(status).Inc()
	b.duration.WithLabelValues("aggregate", status).Observe(float64(elapsed.Milliseconds()))
}

func newDefaultBatch() (*Batch, error) {
	return NewBatch(prometheus.DefaultRegisterer)
}

var Module = fx.Options(
	fx.Provide(newDefaultBatch),
)
