// Package barrierprom exposes a barrier's Stats counters as Prometheus
// metrics, via a read-on-collect collector.
package barrierprom

import (
	"github.com/prometheus/client_golang/prometheus"

	asymbarrier "github.com/joeycumines/go-asymbarrier"
)

// StatsSource is anything with a Stats snapshot; both *asymbarrier.Barrier
// and *asymbarrier.SymmBarrier qualify. The barrier must have been built
// with asymbarrier.WithMetrics(true), or every metric reads zero.
type StatsSource interface {
	Stats() asymbarrier.Stats
}

// Collector implements prometheus.Collector over a StatsSource, reading a
// fresh snapshot on every scrape.
type Collector struct {
	source StatsSource

	epochsOpened    *prometheus.Desc
	epochsCommitted *prometheus.Desc
	checksFast      *prometheus.Desc
	checksSlow      *prometheus.Desc
	spins           *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector for the given source. The optional
// constLabels distinguish multiple barriers registered in one registry.
// Panics if source is nil.
func NewCollector(source StatsSource, constLabels prometheus.Labels) *Collector {
	if source == nil {
		panic(`barrierprom: nil stats source`)
	}

	return &Collector{
		source: source,
		epochsOpened: prometheus.NewDesc(
			"asymbarrier_epochs_opened_total",
			"Total number of epochs opened by the updater.",
			nil, constLabels,
		),
		epochsCommitted: prometheus.NewDesc(
			"asymbarrier_epochs_committed_total",
			"Total number of epochs committed by the updater.",
			nil, constLabels,
		),
		checksFast: prometheus.NewDesc(
			"asymbarrier_checks_fast_total",
			"Total waiter checks that observed no open epoch.",
			nil, constLabels,
		),
		checksSlow: prometheus.NewDesc(
			"asymbarrier_checks_slow_total",
			"Total waiter checks that acknowledged an epoch.",
			nil, constLabels,
		),
		spins: prometheus.NewDesc(
			"asymbarrier_spins_total",
			"Total relaxation-hint emissions across all spin loops.",
			nil, constLabels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.epochsOpened
	ch <- c.epochsCommitted
	ch <- c.checksFast
	ch <- c.checksSlow
	ch <- c.spins
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.epochsOpened, prometheus.CounterValue, float64(stats.EpochsOpened))
	ch <- prometheus.MustNewConstMetric(c.epochsCommitted, prometheus.CounterValue, float64(stats.EpochsCommitted))
	ch <- prometheus.MustNewConstMetric(c.checksFast, prometheus.CounterValue, float64(stats.ChecksFast))
	ch <- prometheus.MustNewConstMetric(c.checksSlow, prometheus.CounterValue, float64(stats.ChecksSlow))
	ch <- prometheus.MustNewConstMetric(c.spins, prometheus.CounterValue, float64(stats.Spins))
}
