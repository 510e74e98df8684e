// Package metrics exposes Prometheus collectors for the dashboard service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	articleQueriesTotal        *prometheus.CounterVec
	triggerRequestsTotal       *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedboard_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feedboard_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		articleQueriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedboard_article_queries_total",
				Help: "Total number of article listing queries, labeled by content type.",
			},
			[]string{"type"},
		)

		triggerRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedboard_trigger_requests_total",
				Help: "Total number of webhook trigger attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveArticleQuery increments the article query counter for a content type.
func ObserveArticleQuery(contentType string) {
	articleQueriesTotal.WithLabelValues(contentType).Inc()
}

// ObserveTrigger increments the trigger counter for the given outcome.
func ObserveTrigger(outcome string) {
	triggerRequestsTotal.WithLabelValues(outcome).Inc()
}
