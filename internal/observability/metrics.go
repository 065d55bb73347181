package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authorization outcomes
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
)

// Metrics records request, authorization and validation counters.
// A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	registry           *prometheus.Registry
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	authzDecisions     *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
}

// NewMetrics registers the blog collectors on a fresh registry together
// with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_authorization_decisions_total",
			Help: "Authorization decisions by resource, action and outcome.",
		}, []string{"resource", "action", "outcome"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_validation_failures_total",
			Help: "Rejected payloads by rule set.",
		}, []string{"rule_set"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.authzDecisions,
		m.validationFailures,
	)
	return m
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordAuthorization counts a policy decision
func (m *Metrics) RecordAuthorization(resource, action string, allowed bool) {
	if m == nil {
		return
	}
	outcome := OutcomeDenied
	if allowed {
		outcome = OutcomeAllowed
	}
	m.authzDecisions.WithLabelValues(resource, action, outcome).Inc()
}

// RecordValidationFailure counts a rejected payload
func (m *Metrics) RecordValidationFailure(ruleSet string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(ruleSet).Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
