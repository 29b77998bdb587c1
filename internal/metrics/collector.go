// Package metrics exposes batch validation counters to Prometheus.
//
// A Collector is a core.Observer: pass it in core.Options and every row and
// batch the processor handles is counted. It owns its registry so tests and
// multiple servers in one process do not collide on the global one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/recipientcsv/internal/core"
)

// DefaultNamespace prefixes metric names when none is configured.
const DefaultNamespace = "recipientcsv"

// Batch results recorded on batches_total.
const (
	ResultComplete   = "complete"
	ResultTimedOut   = "timed_out"
	ResultIncomplete = "incomplete"
)

// Collector records row and batch metrics.
type Collector struct {
	registry *prometheus.Registry

	rows          *prometheus.CounterVec
	rowErrors     *prometheus.CounterVec
	batches       *prometheus.CounterVec
	batchRows     *prometheus.HistogramVec
	batchDuration *prometheus.HistogramVec
	duplicates    *prometheus.CounterVec
}

// NewCollector creates a collector registered on registry. If registry is
// nil a new one is created.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{
		registry: registry,
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows checked, by channel and whether they were valid.",
		}, []string{"channel", "valid"}),
		rowErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_errors_total",
			Help:      "Row errors found, by channel and error kind.",
		}, []string{"channel", "kind"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches finished, by channel and result.",
		}, []string{"channel", "result"}),
		batchRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_rows",
			Help:      "Rows per finished batch.",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 5),
		}, []string{"channel"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time spent reading and checking a batch.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"channel"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_recipients_total",
			Help:      "Rows whose recipient already appeared earlier in the batch.",
		}, []string{"channel"}),
	}

	registry.MustRegister(c.rows, c.rowErrors, c.batches, c.batchRows, c.batchDuration, c.duplicates)
	return c
}

// RowProcessed implements core.Observer.
func (c *Collector) RowProcessed(ch core.Channel, o *core.Outcome) {
	channel := string(ch)
	if o.Valid() {
		c.rows.WithLabelValues(channel, "true").Inc()
		return
	}
	c.rows.WithLabelValues(channel, "false").Inc()
	for _, e := range o.Errors {
		c.rowErrors.WithLabelValues(channel, e.Kind.String()).Inc()
	}
}

// BatchFinished implements core.Observer.
func (c *Collector) BatchFinished(s *core.Summary) {
	channel := string(s.Channel)

	result := ResultIncomplete
	switch {
	case s.TimedOut:
		result = ResultTimedOut
	case s.Complete:
		result = ResultComplete
	}
	c.batches.WithLabelValues(channel, result).Inc()
	c.batchRows.WithLabelValues(channel).Observe(float64(s.TotalRows))
	c.batchDuration.WithLabelValues(channel).Observe(s.Elapsed.Seconds())
	if s.DuplicateRecipients > 0 {
		c.duplicates.WithLabelValues(channel).Add(float64(s.DuplicateRecipients))
	}
}

// WatchLimiter exports the limiter's active and available slots as gauges.
func (c *Collector) WatchLimiter(namespace string, l *core.BatchLimiter) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	c.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_batches",
			Help:      "Batches being checked right now.",
		}, func() float64 { return float64(l.ActiveCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "available_batch_slots",
			Help:      "Batches that can start without waiting.",
		}, func() float64 { return float64(l.Available()) }),
	)
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

var _ core.Observer = (*Collector)(nil)
