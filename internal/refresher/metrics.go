package refresher

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	startTime   prometheus.Gauge
	refreshTime prometheus.Gauge

	refreshDuration prometheus.Histogram
	fetchDuration   *prometheus.HistogramVec
	feedStatus      *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		startTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "podcastd_start_time",
			Help: "Daemon start time",
		}),

		// Set only when a refresh completes with no failed feeds, so alerting on
		// its age catches both a stuck daemon and a persistently broken feed.
		refreshTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "podcastd_refresh_time",
			Help: "Last fully successful refresh time",
		}),

		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "podcastd_refresh_duration",
			Help:    "Refresh duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}),

		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "podcastd_fetch_duration",
			Help:    "Feed fetch duration",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"feed"}),

		feedStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podcastd_feed_status",
			Help: "Feed refresh status",
		}, []string{"feed", "status"}),
	}
}

var _ prometheus.Collector = &metrics{}

func (m *metrics) Describe(descs chan<- *prometheus.Desc) {
	m.startTime.Describe(descs)
	m.refreshTime.Describe(descs)
	m.refreshDuration.Describe(descs)
	m.fetchDuration.Describe(descs)
	m.feedStatus.Describe(descs)
}

func (m *metrics) Collect(metrics chan<- prometheus.Metric) {
	m.startTime.Collect(metrics)
	m.refreshTime.Collect(metrics)
	m.refreshDuration.Collect(metrics)
	m.fetchDuration.Collect(metrics)
	m.feedStatus.Collect(metrics)
}

// Collector exposes the refresher metrics for registration.
func (r *Refresher) Collector() prometheus.Collector {
	return r.metrics
}
