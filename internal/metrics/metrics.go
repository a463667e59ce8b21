// Package metrics exposes Prometheus collectors for story generation.
//
// Every Collector owns its registry, so tests and the CLI never touch the
// global default registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Collector holds the application metrics.
type Collector struct {
	registry *prometheus.Registry

	modelRequests   *prometheus.CounterVec
	modelDuration   *prometheus.HistogramVec
	storiesTotal    prometheus.Counter
	duplicatesTotal prometheus.Counter
	storyPages      prometheus.Histogram
	rateLimitWait   prometheus.Histogram
}

// New creates a Collector registered on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		modelRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tinytales_model_requests_total",
				Help: "Model requests by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		modelDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tinytales_model_request_duration_seconds",
				Help:    "Model request duration in seconds by provider.",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s to ~2m
			},
			[]string{"provider"},
		),
		storiesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tinytales_stories_generated_total",
			Help: "Stories generated successfully.",
		}),
		duplicatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tinytales_duplicates_detected_total",
			Help: "Generated stories flagged as likely duplicates.",
		}),
		storyPages: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tinytales_story_pages",
			Help:    "Pages per generated story.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		rateLimitWait: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tinytales_rate_limiter_wait_seconds",
			Help:    "Time batch generation spent waiting on the rate limiter.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
		}),
	}
}

// ObserveModelRequest records one model call.
func (c *Collector) ObserveModelRequest(provider, outcome string, elapsed time.Duration) {
	c.modelRequests.WithLabelValues(provider, outcome).Inc()
	c.modelDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// StoryGenerated records a finished story and its page count.
func (c *Collector) StoryGenerated(pages int) {
	c.storiesTotal.Inc()
	c.storyPages.Observe(float64(pages))
}

// DuplicateDetected counts a duplicate warning.
func (c *Collector) DuplicateDetected() {
	c.duplicatesTotal.Inc()
}

// RateLimitWaited records time spent blocked on the batch limiter.
func (c *Collector) RateLimitWaited(d time.Duration) {
	c.rateLimitWait.Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Summary returns counter totals for end-of-run reporting.
func (c *Collector) Summary() map[string]string {
	mfs, err := c.registry.Gather()
	if err != nil {
		return nil
	}
	out := make(map[string]string)
	for _, mf := range mfs {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		out[mf.GetName()] = strconv.FormatFloat(total, 'f', -1, 64)
	}
	return out
}
