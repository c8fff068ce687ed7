package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cyberrisk"

// Metrics holds the Prometheus collectors for HTTP traffic and analyses.
type Metrics struct {
	gatherer         prometheus.Gatherer
	requestsTotal    *prometheus.CounterVec
	requestsInFlight prometheus.Gauge
	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		gatherer: reg,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method and status code",
			},
			[]string{"method", "status"},
		),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Log analyses by outcome",
			},
			[]string{"outcome"},
		),
		analysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Time spent per analysis, dominated by the AGI call",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.requestsTotal, m.requestsInFlight, m.analysesTotal, m.analysisDuration)
	return m
}

// ObserveAnalysis implements the analysis service's Observer.
func (m *Metrics) ObserveAnalysis(outcome string, elapsed time.Duration) {
	m.analysesTotal.WithLabelValues(outcome).Inc()
	m.analysisDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		m.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
	})
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
