// Package metrics exports the occupancy of sharded maps to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"shardmap"
)

// StatsSource is anything that can report per-shard entry counts,
// typically a *shardmap.ShardedMap.
type StatsSource interface {
	Stats() []shardmap.ShardStats
}

// Collector implements prometheus.Collector. Values are read from the source
// at scrape time, so registering it costs nothing on the map's hot path.
type Collector struct {
	src StatsSource

	shardEntries *prometheus.Desc
	entries      *prometheus.Desc
	shards       *prometheus.Desc
}

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string, src StatsSource) *Collector {
	return &Collector{
		src: src,
		shardEntries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "shard_entries"),
			"Number of entries held by each shard.",
			[]string{"shard"}, nil,
		),
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "entries"),
			"Total number of entries across all shards.",
			nil, nil,
		),
		shards: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "shards"),
			"Number of shards.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.shardEntries
	ch <- c.entries
	ch <- c.shards
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.src.Stats()
	total := 0
	for _, st := range stats {
		total += st.Count
		ch <- prometheus.MustNewConstMetric(c.shardEntries, prometheus.GaugeValue,
			float64(st.Count), strconv.Itoa(st.Index))
	}
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(total))
	ch <- prometheus.MustNewConstMetric(c.shards, prometheus.GaugeValue, float64(len(stats)))
}
