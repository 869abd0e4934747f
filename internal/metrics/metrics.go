// Package metrics counts provisioning outcomes and backend latency, and
// optionally pushes them to a Prometheus Pushgateway after every action.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Write outcomes recorded by WriteResult.
const (
	WriteVerified = "verified"
	WriteMismatch = "mismatch"
	WriteFailed   = "failed"
)

// Recorder owns a private registry; a console run is one process, one station.
type Recorder struct {
	registry *prometheus.Registry
	pusher   *push.Pusher

	actionsTotal    *prometheus.CounterVec
	issuedTotal     prometheus.Counter
	writesTotal     *prometheus.CounterVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithPushgateway pushes the registry to url under job on every Push call.
func WithPushgateway(url, job string) Option {
	return func(r *Recorder) {
		if url == "" {
			return
		}
		r.pusher = push.New(url, job).Gatherer(r.registry)
	}
}

// New creates a recorder with all collectors registered.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "apm",
				Name:      "actions_total",
				Help:      "Menu actions executed by action and result",
			},
			[]string{"action", "result"},
		),
		issuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "apm",
				Name:      "factory_numbers_issued_total",
				Help:      "Factory numbers issued by the backend",
			},
		),
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "apm",
				Subsystem: "device",
				Name:      "writes_total",
				Help:      "Factory number writes by outcome",
			},
			[]string{"result"},
		),
		backendCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "apm",
				Subsystem: "backend",
				Name:      "requests_total",
				Help:      "Backend requests by operation and result",
			},
			[]string{"operation", "result"},
		),
		backendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "apm",
				Subsystem: "backend",
				Name:      "request_duration_seconds",
				Help:      "Backend request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
			},
			[]string{"operation"},
		),
	}

	r.registry.MustRegister(
		r.actionsTotal,
		r.issuedTotal,
		r.writesTotal,
		r.backendCalls,
		r.backendDuration,
	)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveAction counts a dispatched menu action.
func (r *Recorder) ObserveAction(action string, err error) {
	r.actionsTotal.WithLabelValues(action, result(err)).Inc()
}

// FactoryNumberIssued counts a number issued by the backend.
func (r *Recorder) FactoryNumberIssued() {
	r.issuedTotal.Inc()
}

// WriteResult counts a device write by outcome.
func (r *Recorder) WriteResult(outcome string) {
	r.writesTotal.WithLabelValues(outcome).Inc()
}

// ObserveBackend records a backend round trip. Its signature matches
// backend.Observer.
func (r *Recorder) ObserveBackend(operation string, err error, elapsed time.Duration) {
	r.backendCalls.WithLabelValues(operation, result(err)).Inc()
	r.backendDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Push sends the registry to the Pushgateway, if one is configured.
func (r *Recorder) Push(ctx context.Context) error {
	if r.pusher == nil {
		return nil
	}
	return r.pusher.PushContext(ctx)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
