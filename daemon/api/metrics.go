package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// These are the agent's own process-health metrics, registered on the
// default Prometheus registry and served at /internal/metrics via
// promhttp.Handler() — distinct from the hand-rolled device exposition
// server.go serves at /metrics, grounded in services/api/metrics.go's
// promauto-based counters.
var (
	scrapeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "all_smi_agent_scrape_duration_seconds",
		Help:    "Duration of a local /metrics scrape render.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	})

	scrapeDeviceCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "all_smi_agent_scrape_device_count",
		Help: "Number of devices reported in the most recent scrape.",
	})

	collectorRestartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "all_smi_agent_collector_restarts_total",
		Help: "Total external-process collector restarts, by command.",
	}, []string{"command"})

	peerScrapeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "all_smi_agent_aggregator_peer_scrapes_total",
		Help: "Total fleet-aggregator peer scrape attempts, by outcome.",
	}, []string{"outcome"})
)

// RecordPeerScrapeStats folds one aggregator Report's connection stats into
// the agent's own process metrics.
func RecordPeerScrapeStats(successes, failures int) {
	peerScrapeTotal.WithLabelValues("success").Add(float64(successes))
	peerScrapeTotal.WithLabelValues("failure").Add(float64(failures))
}

// RecordCollectorRestart records one external-process collector restart.
func RecordCollectorRestart(command string) {
	collectorRestartsTotal.WithLabelValues(command).Inc()
}
