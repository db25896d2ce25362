// Package metrics exposes the Prometheus counters and histogram this system
// emits, scoped to what the fingerprinting and matching pipelines actually
// produce rather than the broad HTTP/cache/Redis families a general web
// backend would track.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector this process registers.
type Metrics struct {
	FingerprintsGenerated prometheus.Counter
	PeaksPicked           prometheus.Counter

	IndexLookupsTotal    prometheus.Counter
	IndexLookupDuration  prometheus.Histogram

	SessionVerdictsTotal *prometheus.CounterVec // label: outcome (found, timed_out)

	IndexerFilesTotal *prometheus.CounterVec // label: outcome (indexed, skipped, failed)
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all collectors exactly once per process.
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			FingerprintsGenerated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "fingerprints_generated_total",
				Help: "Total number of fingerprints produced by the builder",
			}),
			PeaksPicked: promauto.NewCounter(prometheus.CounterOpts{
				Name: "peaks_picked_total",
				Help: "Total number of spectral peaks selected by the peak picker",
			}),
			IndexLookupsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "index_lookups_total",
				Help: "Total number of FindPostings calls against the index store",
			}),
			IndexLookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "index_lookup_duration_seconds",
				Help:    "Latency of FindPostings calls",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}),
			SessionVerdictsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "session_verdicts_total",
				Help: "Total number of streaming sessions by terminal verdict",
			}, []string{"outcome"}),
			IndexerFilesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "indexer_files_total",
				Help: "Total number of files processed by the indexer by outcome",
			}, []string{"outcome"}),
		}
	})
	return instance
}

// Get returns the global metrics instance, initializing it if needed.
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
