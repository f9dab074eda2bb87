package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scramble sources for ScramblesServedTotal.
const (
	SourceCache     = "cache"
	SourceGenerated = "generated"
	SourceSeeded    = "seeded"
)

var (
	// Counter: scrambles handed to rounds, by where they came from.
	ScramblesServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrambles_served_total",
			Help: "Total number of scrambles served, by puzzle and source.",
		},
		[]string{"puzzle", "source"},
	)

	// Counter: finished background refills.
	CacheRefillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scramble_cache_refills_total",
			Help: "Total number of background cache refills, by puzzle and result.",
		},
		[]string{"puzzle", "result"},
	)

	// Gauge: buffered scrambles per puzzle as of the last buffer operation.
	CacheBufferSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scramble_cache_buffer_size",
			Help: "Number of pre-generated scrambles buffered per puzzle.",
		},
		[]string{"puzzle"},
	)

	// Histogram: buffer operation latency in seconds.
	BufferOpSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scramble_buffer_op_seconds",
			Help:    "Latency of scramble buffer operations in seconds.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"backend", "op"},
	)

	// Histogram: HTTP latency in seconds.
	HTTPLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scramble_http_latency_seconds",
			Help:    "HTTP request latency for the scramble server in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "status_code"},
	)
)

// Register is called once in main() to register metrics.
func Register() {
	prometheus.MustRegister(
		ScramblesServedTotal,
		CacheRefillsTotal,
		CacheBufferSize,
		BufferOpSeconds,
		HTTPLatencySeconds,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures latency for each HTTP request. Paths are left out of
// the labels because round titles make them unbounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		HTTPLatencySeconds.
			WithLabelValues(r.Method, strconv.Itoa(rec.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
