// Package metrics registers the Prometheus collectors of the widget service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "api_widget"

var (
	RenderPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "render_passes_total",
		Help:      "Render passes by outcome (applied, store_error, apply_error).",
	}, []string{"outcome"})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_pass_duration_seconds",
		Help:      "Time from snapshot read to view applied.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	TriggerFires = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trigger_fires_total",
		Help:      "Fired trigger handles by action tag.",
	}, []string{"tag"})

	ForegroundRelays = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "foreground_intents_total",
		Help:      "Intents sent to the foreground app by action and outcome.",
	}, []string{"action", "outcome"})

	AppliedInstances = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "applied_instances",
		Help:      "Widget instances currently holding an applied view.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
