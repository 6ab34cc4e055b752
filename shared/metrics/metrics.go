// Package metrics exposes Prometheus instruments for the translation pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "translate"

// Worker message outcomes.
const (
	OutcomeCompleted    = "completed"
	OutcomeFailed       = "failed"
	OutcomeRetried      = "retried"
	OutcomeDeadLettered = "dead_lettered"
	OutcomeConflict     = "conflict"
	OutcomeMalformed    = "malformed"
	OutcomeRequeued     = "requeued"
)

// Collector groups every instrument. A nil *Collector is valid and records nothing.
type Collector struct {
	requests          *prometheus.CounterVec
	statusUpdates     *prometheus.CounterVec
	messages          *prometheus.CounterVec
	jobDuration       prometheus.Histogram
	inFlight          prometheus.Gauge
	translatorAttempt *prometheus.CounterVec
}

// NewCollector creates the instruments and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Translation requests received by outcome",
		}, []string{"outcome"}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_updates_total",
			Help:      "Accepted status callbacks by target status",
		}, []string{"status"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "messages_total",
			Help:      "Consumed job messages by outcome",
		}, []string{"outcome"}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Time spent processing one job message",
			Buckets:   prometheus.DefBuckets,
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "jobs_in_flight",
			Help:      "Job messages currently being processed",
		}),
		translatorAttempt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translator",
			Name:      "attempts_total",
			Help:      "Calls to the translation provider by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.requests,
		c.statusUpdates,
		c.messages,
		c.jobDuration,
		c.inFlight,
		c.translatorAttempt,
	)
	return c
}

func (c *Collector) RecordRequest(outcome string) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordStatusUpdate(status string) {
	if c == nil {
		return
	}
	c.statusUpdates.WithLabelValues(status).Inc()
}

func (c *Collector) RecordMessage(outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.messages.WithLabelValues(outcome).Inc()
	c.jobDuration.Observe(took.Seconds())
}

func (c *Collector) RecordTranslatorAttempt(result string) {
	if c == nil {
		return
	}
	c.translatorAttempt.WithLabelValues(result).Inc()
}

// TrackInFlight increments the in-flight gauge and returns the matching decrement.
func (c *Collector) TrackInFlight() func() {
	if c == nil {
		return func() {}
	}
	c.inFlight.Inc()
	return c.inFlight.Dec
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
