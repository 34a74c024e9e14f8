package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "groupfinder",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "groupfinder",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Workflow metrics

	GroupRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "groupfinder",
		Name:      "group_requests_total",
		Help:      "Join-request workflow operations, by outcome.",
	}, []string{"outcome"})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "groupfinder",
		Name:      "logins_total",
		Help:      "Login attempts, by result.",
	}, []string{"result"})

	// Cleanup metrics

	TokensPurgedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "groupfinder",
		Name:      "tokens_purged_total",
		Help:      "Expired credentials removed by the cleanup sweep.",
	}, []string{"kind"})

	CleanupCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "groupfinder",
		Name:      "cleanup_cycle_duration_seconds",
		Help:      "Time taken for one cleanup sweep.",
		Buckets:   prometheus.DefBuckets,
	})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		GroupRequestsTotal,
		LoginsTotal,
		TokensPurgedTotal,
		CleanupCycleDuration,
	)
}

// HealthReporter is satisfied by *health.Checker.
type HealthReporter interface {
	LivenessHandler() http.Handler
	ReadinessHandler() http.Handler
}

func NewServer(addr string, checker HealthReporter) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", checker.LivenessHandler())
	mux.Handle("/readyz", checker.ReadinessHandler())
	return &http.Server{Addr: addr, Handler: mux}
}
