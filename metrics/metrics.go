package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for update handling and relay calls.
type Collector struct {
	registry      *prometheus.Registry
	updates       *prometheus.CounterVec
	dialogSteps   *prometheus.CounterVec
	relayCalls    *prometheus.CounterVec
	relayDuration prometheus.Histogram
}

// NewCollector constructs a collector with its own registry.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	updates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventbot",
		Name:      "updates_total",
		Help:      "Total number of inbound Telegram updates by kind.",
	}, []string{"kind"})

	dialogSteps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventbot",
		Name:      "dialog_steps_total",
		Help:      "Total number of dialogue stage transitions by family.",
	}, []string{"family"})

	relayCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventbot",
		Name:      "relay_calls_total",
		Help:      "Total number of recommendation relay turns by outcome.",
	}, []string{"outcome"})

	relayDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventbot",
		Name:      "relay_duration_seconds",
		Help:      "Latency distribution for recommendation relay turns.",
		Buckets:   prometheus.DefBuckets,
	})

	for _, c := range []prometheus.Collector{updates, dialogSteps, relayCalls, relayDuration} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:      registry,
		updates:       updates,
		dialogSteps:   dialogSteps,
		relayCalls:    relayCalls,
		relayDuration: relayDuration,
	}, nil
}

// Handler returns an HTTP handler exposing the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Update records one inbound update of the given kind.
func (c *Collector) Update(kind string) {
	c.updates.WithLabelValues(kind).Inc()
}

// DialogStep records one dialogue stage transition.
func (c *Collector) DialogStep(family string) {
	c.dialogSteps.WithLabelValues(family).Inc()
}

// RelayCall records one consultation turn.
func (c *Collector) RelayCall(outcome string, duration time.Duration) {
	c.relayCalls.WithLabelValues(outcome).Inc()
	c.relayDuration.Observe(duration.Seconds())
}
