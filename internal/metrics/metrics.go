// Package metrics holds the Prometheus collectors for the import pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netusage_build_info",
		Help: "Build information of netusage.",
	}, []string{"version"})

	ImportRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netusage_import_records_total", Help: "Report records processed, by importer and outcome (inserted, updated, skipped).",
	}, []string{"importer", "outcome"})
	ImportFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netusage_import_failures_total", Help: "Importer executions aborted by a document or storage failure.",
	}, []string{"importer"})
	ImportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netusage_import_duration_seconds",
		Help:    "Duration of one importer execution.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"importer"})

	AntennaResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netusage_antenna_resolutions_total", Help: "Antenna resolutions by outcome.",
	}, []string{"outcome"})

	PublishSnapshots = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netusage_publish_snapshots_total", Help: "Carrier snapshots written, by status.",
	}, []string{"status"})
	ViewRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netusage_view_refresh_total", Help: "Materialized view refreshes, by view and status.",
	}, []string{"view", "status"})
)

// Record outcome label values.
const (
	OutcomeInserted = "inserted"
	OutcomeUpdated  = "updated"
	OutcomeSkipped  = "skipped"
)
