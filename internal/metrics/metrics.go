// Package metrics records generation and delivery counters for a seeder
// run. The collectors live on a private registry that is written out as a
// node_exporter textfile when the run ends.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sink write results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the collectors for one run.
type Metrics struct {
	Registry *prometheus.Registry

	// Generation metrics
	EventsTotal         *prometheus.CounterVec
	SessionsTotal       prometheus.Counter
	TravelSessionsTotal prometheus.Counter
	AnomaliesTotal      prometheus.Counter
	Users               prometheus.Gauge
	GenerationDuration  prometheus.Gauge

	// Sink metrics
	SinkDocumentsTotal *prometheus.CounterVec
	SinkDuration       *prometheus.HistogramVec

	LastSuccess prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entraseed_events_generated_total",
				Help: "Total number of sign-in events generated",
			},
			[]string{"action"},
		),

		SessionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "entraseed_sessions_total",
				Help: "Total number of sessions generated",
			},
		),

		TravelSessionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "entraseed_travel_sessions_total",
				Help: "Sessions started outside the user's home locations",
			},
		),

		AnomaliesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "entraseed_anomalies_total",
				Help: "Total number of impossible-travel logins generated",
			},
		),

		Users: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "entraseed_users",
				Help: "Size of the synthetic user population",
			},
		),

		GenerationDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "entraseed_generation_duration_seconds",
				Help: "Wall time spent generating events",
			},
		),

		SinkDocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entraseed_sink_documents_total",
				Help: "Documents delivered to each sink",
			},
			[]string{"sink", "result"},
		),

		SinkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "entraseed_sink_write_duration_seconds",
				Help:    "Duration of sink writes in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"sink"},
		),

		LastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "entraseed_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run",
			},
		),
	}
}

// ObserveSink records one sink write. Documents the sink did not accept
// count as failures.
func (m *Metrics) ObserveSink(name string, total, accepted int, d time.Duration) {
	m.SinkDocumentsTotal.WithLabelValues(name, ResultSuccess).Add(float64(accepted))
	if failed := total - accepted; failed > 0 {
		m.SinkDocumentsTotal.WithLabelValues(name, ResultFailure).Add(float64(failed))
	}
	m.SinkDuration.WithLabelValues(name).Observe(d.Seconds())
}

// WriteTextfile writes the registry to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
