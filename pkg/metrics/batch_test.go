package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/hubreport/pkg/types"
)

// counterValue reads the counter name{labels} from reg, or 0 when absent.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestBatch_CountsCrawlSteps(t *testing.T) {
	reg := prometheus.NewRegistry()
	b, err := NewBatch(reg)
	require.NoError(t, err)

	b.CrawlStep("berlin", types.CrawlStatusProcessed, 3, 1, 0, 20*time.Millisecond)
	b.CrawlStep("berlin", types.CrawlStatusSkipped, 0, 0, 0, time.Millisecond)

	assert.Equal(t, 1.0, counterValue(t, reg, "hubreport_crawl_steps_total", map[string]string{"hub": "berlin", "status": "processed"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "hubreport_crawl_steps_total", map[string]string{"hub": "berlin", "status": "skipped"}))
	assert.Equal(t, 3.0, counterValue(t, reg, "hubreport_crawl_snapshots_total", map[string]string{"hub": "berlin", "result": "processed"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "hubreport_crawl_snapshots_total", map[string]string{"hub": "berlin", "result": "skipped"}))
}

func TestNewBatch_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewBatch(reg)
	require.NoError(t, err)
	second, err := NewBatch(reg)
	require.NoError(t, err)

	first.Aggregation("aggregated", time.Millisecond)
	second.Aggregation("aggregated", time.Millisecond)
	assert.Equal(t, 2.0, counterValue(t, reg, "hubreport_aggregations_total", map[string]string{"status": "aggregated"}))
}
