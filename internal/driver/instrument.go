package driver

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"knife/internal/schema"
)

// Metrics holds the collectors shared by every instrumented driver.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the driver collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "knife",
			Subsystem: "driver",
			Name:      "operations_total",
			Help:      "Driver operations by backend, operation and outcome.",
		}, []string{"backend", "op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "knife",
			Subsystem: "driver",
			Name:      "operation_duration_seconds",
			Help:      "Driver operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"backend", "op"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.operations, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

type instrumented struct {
	next    Driver
	backend string
	metrics *Metrics
}

// Instrument decorates d so every call is counted and timed.
func Instrument(d Driver, backend string, metrics *Metrics) Driver {
	if metrics == nil {
		return d
	}
	return &instrumented{next: d, backend: backend, metrics: metrics}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.metrics.operations.WithLabelValues(i.backend, op, outcome).Inc()
	i.metrics.duration.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Read(ctx context.Context, src schema.Source, q Query) (records []schema.Record, err error) {
	defer func(start time.Time) { i.observe("read", start, err) }(time.Now())
	return i.next.Read(ctx, src, q)
}

func (i *instrumented) Write(ctx context.Context, m *schema.Model, rec schema.Record, filters ...schema.Filter) (err error) {
	defer func(start time.Time) { i.observe("write", start, err) }(time.Now())
	return i.next.Write(ctx, m, rec, filters...)
}

func (i *instrumented) Erase(ctx context.Context, m *schema.Model, filters ...schema.Filter) (err error) {
	defer func(start time.Time) { i.observe("erase", start, err) }(time.Now())
	return i.next.Erase(ctx, m, filters...)
}

// Close closes the wrapped driver when it holds resources.
func (i *instrumented) Close() error {
	if c, ok := i.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
