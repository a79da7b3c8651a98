package storage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors shared by instrumented backends.
type Metrics struct {
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bytes      *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them with registerer when it
// is not nil.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "persist",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Storage operations by backend and operation.",
		}, []string{"backend", "operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "persist",
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Failed storage operations by backend and operation.",
		}, []string{"backend", "operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "persist",
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Storage operation latency.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"backend", "operation"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "persist",
			Subsystem: "storage",
			Name:      "bytes_total",
			Help:      "Bytes read and written by backend and operation.",
		}, []string{"backend", "operation"}),
	}
	if registerer != nil {
		for _, collector := range []prometheus.Collector{m.operations, m.errors, m.duration, m.bytes} {
			if err := registerer.Register(collector); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Instrumented records operation counts, failures, latency and payload sizes
// for a backend. Missing keys are not counted as failures.
type Instrumented struct {
	backend Storage
	name    string
	metrics *Metrics
}

// NewInstrumented wraps backend, labelling its series with name.
func NewInstrumented(backend Storage, name string, metrics *Metrics) *Instrumented {
	return &Instrumented{backend: backend, name: name, metrics: metrics}
}

func (i *Instrumented) Get(key string) ([]byte, error) {
	start := time.Now()
	value, err := i.backend.Get(key)
	i.observe("get", start, len(value), err)
	return value, err
}

func (i *Instrumented) Set(key string, value []byte) error {
	start := time.Now()
	err := i.backend.Set(key, value)
	i.observe("set", start, len(value), err)
	return err
}

func (i *Instrumented) Remove(key string) error {
	start := time.Now()
	err := i.backend.Remove(key)
	i.observe("remove", start, 0, err)
	return err
}

func (i *Instrumented) Keys(prefix string) ([]string, error) {
	return Keys(i.backend, prefix)
}

func (i *Instrumented) observe(operation string, start time.Time, size int, err error) {
	if i.metrics == nil {
		return
	}
	i.metrics.operations.WithLabelValues(i.name, operation).Inc()
	i.metrics.duration.WithLabelValues(i.name, operation).Observe(time.Since(start).Seconds())
	if err != nil && !IsNotFound(err) {
		i.metrics.errors.WithLabelValues(i.name, operation).Inc()
		return
	}
	if size > 0 {
		i.metrics.bytes.WithLabelValues(i.name, operation).Add(float64(size))
	}
}

// ErrorCounter returns the failure counter for backend and operation.
func (m *Metrics) ErrorCounter(backend, operation string) prometheus.Counter {
	return m.errors.WithLabelValues(backend, operation)
}
