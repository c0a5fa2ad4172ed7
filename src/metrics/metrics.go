// Package metrics records catalogue fetch outcomes as Prometheus metrics.
//
// The aggregator is a batch job, so nothing is served over HTTP; the fetch
// command can write the default registry to a node_exporter textfile instead.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// SourceFetchesTotal counts fetches by source and outcome.
	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogue_source_fetches_total",
			Help: "Total number of catalogue source fetches",
		},
		[]string{"source", "outcome"},
	)

	// SourceFetchDuration tracks how long each source took, including decoding.
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalogue_source_fetch_duration_seconds",
			Help:    "Duration of catalogue source fetches in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	// SourceAddons is the number of addons each source contributed on its last fetch.
	SourceAddons = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalogue_source_addons",
			Help: "Number of addons contributed by the last fetch of a source",
		},
		[]string{"source"},
	)

	// CatalogueAddons is the size of the last written catalogue.
	CatalogueAddons = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogue_addons",
			Help: "Number of addons in the last built catalogue",
		},
	)

	// LastSuccessTimestamp is the unix time of the last build with at least one healthy source.
	LastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogue_last_success_timestamp_seconds",
			Help: "Unix time of the last catalogue build with at least one healthy source",
		},
	)
)

// RecordSourceFetch records one source's outcome. A failed source contributes zero addons.
func RecordSourceFetch(source string, ok bool, duration time.Duration, addons int) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
		addons = 0
	}
	SourceFetchesTotal.WithLabelValues(source, outcome).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	SourceAddons.WithLabelValues(source).Set(float64(addons))
}

// RecordCatalogue records the size of a merged catalogue
func RecordCatalogue(addons int, healthySources int, now time.Time) {
	CatalogueAddons.Set(float64(addons))
	if healthySources > 0 {
		LastSuccessTimestamp.Set(float64(now.Unix()))
	}
}

// WriteTextfile writes every registered metric in the text exposition format
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
