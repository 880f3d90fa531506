package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics for a session.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "snesctl").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for transfer duration seconds.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithMetricsConstLabels sets constant labels for all metrics.
func WithMetricsConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithMetricsBuckets sets the transfer duration histogram buckets.
func WithMetricsBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithMetricsRegistry sets the Prometheus registry.
func WithMetricsRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "snesctl",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus instruments for one or more sessions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestErrors    *prometheus.CounterVec
	bytesUploaded    prometheus.Counter
	bytesDownloaded  prometheus.Counter
	transferDuration *prometheus.HistogramVec
	connectsTotal    prometheus.Counter
}

// NewMetrics creates and registers the client metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "requests_total",
			Help:        "Control requests sent, by opcode.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"opcode"}),

		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "request_errors_total",
			Help:        "Failed operations, by opcode and error kind.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"opcode", "kind"}),

		bytesUploaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "bytes_uploaded_total",
			Help:        "Binary payload bytes sent to the device.",
			ConstLabels: cfg.ConstLabels,
		}),

		bytesDownloaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "bytes_downloaded_total",
			Help:        "Binary payload bytes received from the device.",
			ConstLabels: cfg.ConstLabels,
		}),

		transferDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "transfer_duration_seconds",
			Help:        "Duration of binary transfers, by direction.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"direction"}),

		connectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "connects_total",
			Help:        "Sessions opened.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

func (m *Metrics) observeConnect() {
	if m == nil {
		return
	}
	m.connectsTotal.Inc()
}

func (m *Metrics) observeRequest(opcode string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(opcode).Inc()
}

func (m *Metrics) observeError(opcode string, kind Kind) {
	if m == nil {
		return
	}
	m.requestErrors.WithLabelValues(opcode, kind.String()).Inc()
}

func (m *Metrics) observeUpload(n int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.bytesUploaded.Add(float64(n))
	m.transferDuration.WithLabelValues("upload").Observe(elapsed.Seconds())
}

func (m *Metrics) observeDownload(n int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.bytesDownloaded.Add(float64(n))
	m.transferDuration.WithLabelValues("download").Observe(elapsed.Seconds())
}
