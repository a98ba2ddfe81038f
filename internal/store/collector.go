package store

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	podcastsMetric = prometheus.NewDesc(
		"podcastd_store_podcasts", "Number of stored podcasts", nil, nil)
	episodesMetric = prometheus.NewDesc(
		"podcastd_store_episodes", "Number of stored episodes", nil, nil)
	categoriesMetric = prometheus.NewDesc(
		"podcastd_store_categories", "Number of stored categories", nil, nil)
	followedMetric = prometheus.NewDesc(
		"podcastd_store_followed", "Number of followed podcasts", nil, nil)
)

// StatsCollector exports table counts as gauges. Counting rows on every
// scrape is fine at this scale: the store holds tens of feeds, not millions.
type StatsCollector struct {
	store *Store
}

func NewStatsCollector(store *Store) *StatsCollector {
	return &StatsCollector{store: store}
}

var _ prometheus.Collector = &StatsCollector{}

func (c *StatsCollector) Describe(descs chan<- *prometheus.Desc) {
}

func (c *StatsCollector) Collect(metrics chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := c.store.GetStats(ctx)
	if err != nil {
		metrics <- prometheus.NewInvalidMetric(podcastsMetric, err)
		return
	}

	metrics <- prometheus.MustNewConstMetric(podcastsMetric, prometheus.GaugeValue, float64(stats.Podcasts))
	metrics <- prometheus.MustNewConstMetric(episodesMetric, prometheus.GaugeValue, float64(stats.Episodes))
	metrics <- prometheus.MustNewConstMetric(categoriesMetric, prometheus.GaugeValue, float64(stats.Categories))
	metrics <- prometheus.MustNewConstMetric(followedMetric, prometheus.GaugeValue, float64(stats.Followed))
}
