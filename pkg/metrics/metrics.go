// Package metrics provides Prometheus metrics for the items backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a registry and the collectors registered on it.
// A nil *Recorder records nothing.
type Recorder struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	eventsPublished     *prometheus.CounterVec
	eventPublishErrors  *prometheus.CounterVec
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithNamespace prefixes every metric name.
func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		r.namespace = namespace
	}
}

// WithHistogramBuckets sets the request duration buckets in seconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.histogramBuckets = buckets
		}
	}
}

// WithRegistry registers collectors on registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(r *Recorder) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// New creates a Recorder. Each call gets its own registry unless WithRegistry
// is passed.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(r.registry)
	r.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route, method and status code",
	}, []string{"route", "method", "code"})

	r.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   r.histogramBuckets,
	}, []string{"route", "method"})

	r.eventsPublished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "item_events_published_total",
		Help:      "Item change events delivered to at least one publisher",
	}, []string{"action"})

	r.eventPublishErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "item_event_publish_errors_total",
		Help:      "Item change events that failed on one or more publishers",
	}, []string{"action"})

	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveHTTP records one served request.
func (r *Recorder) ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	r.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// EventPublished counts an event accepted by the publishers.
func (r *Recorder) EventPublished(action string) {
	if r == nil {
		return
	}
	r.eventsPublished.WithLabelValues(action).Inc()
}

// EventPublishFailed counts an event that at least one publisher rejected.
func (r *Recorder) EventPublishFailed(action string) {
	if r == nil {
		return
	}
	r.eventPublishErrors.WithLabelValues(action).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
