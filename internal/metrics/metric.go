// Package metrics exports extraction and build counters in Prometheus
// format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

const namespace = "tagsheet"

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Config configures a Collector.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for the extraction duration histogram (in seconds)
	DurationBuckets []float64
}

// DefaultConfig returns the default collector configuration.
func DefaultConfig() Config {
	return Config{
		DurationBuckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}
}

// Collector holds the pipeline's Prometheus collectors.
type Collector struct {
	registry *prometheus.Registry

	documents       *prometheus.CounterVec
	tagsFound       *prometheus.CounterVec
	builds          *prometheus.CounterVec
	extractDuration prometheus.Histogram
}

// New creates a collector and registers it.
func New(cfg Config) *Collector {
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = DefaultConfig().DurationBuckets
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{registry: registry}

	c.documents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed by the extractor",
		},
		[]string{"status"},
	)
	c.tagsFound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tags_total",
			Help:      "Distinct tags extracted, by category",
		},
		[]string{"category"},
	)
	c.builds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Tag sheet workbooks built",
		},
		[]string{"status"},
	)
	c.extractDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_duration_seconds",
			Help:      "Time spent extracting tags from one document",
			Buckets:   cfg.DurationBuckets,
		},
	)

	registry.MustRegister(c.documents, c.tagsFound, c.builds, c.extractDuration)
	return c
}

// ObserveExtraction records a successful extraction.
func (c *Collector) ObserveExtraction(s tags.Summary, d time.Duration) {
	c.documents.WithLabelValues(StatusSuccess).Inc()
	for _, cat := range tags.Categories() {
		c.tagsFound.WithLabelValues(string(cat)).Add(float64(s.Count(cat)))
	}
	c.extractDuration.Observe(d.Seconds())
}

// ObserveDocumentError records a document that could not be loaded.
func (c *Collector) ObserveDocumentError() {
	c.documents.WithLabelValues(StatusError).Inc()
}

// ObserveBuild records a workbook build.
func (c *Collector) ObserveBuild(err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	c.builds.WithLabelValues(status).Inc()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
