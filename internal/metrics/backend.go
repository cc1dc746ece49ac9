package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backend API client metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinefind",
			Name:      "backend_requests_total",
			Help:      "Total number of restaurant backend requests",
		},
		[]string{"endpoint", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dinefind",
			Name:      "backend_request_duration_seconds",
			Help:      "Restaurant backend request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)
)

// Session metrics.
var (
	SessionFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinefind",
			Name:      "session_fetches_total",
			Help:      "Settled session fetches by trigger and outcome",
		},
		[]string{"reason", "outcome"}, // outcome: success / error / stale
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dinefind",
			Name:      "sessions_active",
			Help:      "Number of live search sessions",
		},
	)

	DetailCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinefind",
			Name:      "detail_cache_total",
			Help:      "Restaurant detail cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registered bool

// Register registers all dinefind Prometheus metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(SessionFetchesTotal)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(DetailCacheTotal)
	registered = true
}
