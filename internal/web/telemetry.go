package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// telemetry tracks the exporter's own scrape activity on a private
// registry, kept separate from the device metrics stream so the two
// never mix names.
type telemetry struct {
	registry *prometheus.Registry

	scrapes  *prometheus.CounterVec
	samples  prometheus.Counter
	duration prometheus.Histogram
}

func newTelemetry() *telemetry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &telemetry{
		registry: reg,
		scrapes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mikrotik_exporter_scrapes_total",
			Help: "Scrape requests served, by outcome.",
		}, []string{"outcome"}),
		samples: factory.NewCounter(prometheus.CounterOpts{
			Name: "mikrotik_exporter_samples_streamed_total",
			Help: "Device samples written to /metrics responses.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mikrotik_exporter_scrape_duration_seconds",
			Help:    "Wall-clock duration of /metrics requests.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// observeScrape records the outcome of one /metrics request.
func (t *telemetry) observeScrape(err error, streamed int, elapsed time.Duration) {
	outcome := "success"
	switch {
	case errors.Is(err, context.Canceled):
		outcome = "canceled"
	case err != nil:
		outcome = "error"
	}
	t.scrapes.WithLabelValues(outcome).Inc()
	t.samples.Add(float64(streamed))
	t.duration.Observe(elapsed.Seconds())
}

// httpHandler exposes the registry at /internal/metrics.
func (t *telemetry) httpHandler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}
