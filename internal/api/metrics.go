package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricHTTPRequestsTotal   = "ranker_http_requests_total"
	MetricHTTPRequestDuration = "ranker_http_request_duration_seconds"
	MetricRankingsTotal       = "ranker_rankings_total"
	MetricRankedEntities      = "ranker_ranked_entities"
)

// Metrics holds the collectors exposed on /metrics. They are not registered
// until Register is called.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rankingsTotal       *prometheus.CounterVec
	rankedEntities      *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		rankingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankingsTotal,
				Help: "Total number of ranking requests by outcome",
			},
			[]string{"outcome"},
		),
		rankedEntities: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRankedEntities,
				Help:    "Number of territories ranked per level",
				Buckets: prometheus.ExponentialBuckets(1, 4, 7),
			},
			[]string{"level"},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.rankingsTotal,
		m.rankedEntities,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRanking(outcome string) {
	m.rankingsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLevel(level string, entities int) {
	m.rankedEntities.WithLabelValues(level).Observe(float64(entities))
}
