// Package metrics holds the prometheus collectors for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jurychain"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	dbDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "operation_duration_seconds",
			Help:      "Duration of document store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "collection", "success"},
	)

	casesSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cases",
			Name:      "submitted_total",
			Help:      "Total number of cases submitted, by final verdict.",
		},
		[]string{"verdict"},
	)

	proofsAttached = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cases",
			Name:      "proofs_attached_total",
			Help:      "Total number of transaction hashes attached to cases.",
		},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		},
		[]string{"scope"},
	)

	feedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "clients",
			Help:      "Current number of connected live feed clients.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight,
		httpRequests,
		httpDuration,
		dbDuration,
		casesSubmitted,
		proofsAttached,
		rateLimited,
		feedClients,
	)
}

// Handler exposes the registry in the prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncInFlight marks the start of a request
func IncInFlight() { httpInFlight.Inc() }

// DecInFlight marks the end of a request
func DecInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records a finished request against its route template
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDBOperation records a single document store call
func RecordDBOperation(operation, collection string, duration time.Duration, err error) {
	dbDuration.WithLabelValues(operation, collection, strconv.FormatBool(err == nil)).Observe(duration.Seconds())
}

// CaseSubmitted counts a stored case
func CaseSubmitted(verdict string) {
	casesSubmitted.WithLabelValues(verdict).Inc()
}

// ProofAttached counts an attached transaction hash
func ProofAttached() {
	proofsAttached.Inc()
}

// RateLimited counts a rejected request
func RateLimited(scope string) {
	rateLimited.WithLabelValues(scope).Inc()
}

// SetFeedClients reports the number of live feed clients
func SetFeedClients(n int) {
	feedClients.Set(float64(n))
}
