package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// CategoryUnbound labels sessions that are not bound to a station.
const CategoryUnbound = "unbound"

var (
	// Session metrics
	SessionsOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stations_sessions_opened_total",
			Help: "Total sessions opened",
		},
		[]string{"category"},
	)

	SessionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stations_sessions_closed_total",
			Help: "Total sessions closed",
		},
		[]string{"category"},
	)

	SessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stations_session_duration_minutes",
			Help:    "Billed session duration in minutes",
			Buckets: []float64{5, 15, 30, 60, 90, 120, 180, 240, 360, 480},
		},
		[]string{"category"},
	)

	RevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stations_revenue_total",
			Help: "Total billed revenue in currency units",
		},
		[]string{"category"},
	)

	SessionRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stations_session_rejections_total",
			Help: "Session open or close requests rejected by a precondition",
		},
		[]string{"reason"},
	)

	// Station metrics
	StationsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stations_by_status",
			Help: "Number of stations per status",
		},
		[]string{"status"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stations_active_sessions",
			Help: "Number of active sessions",
		},
	)

	EventSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stations_event_subscribers",
			Help: "Number of connected station event streams",
		},
	)

	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stations_http_requests_total",
			Help: "Total HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stations_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitedRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stations_rate_limited_requests_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)
)

func init() {
	prometheus.MustRegister(
		SessionsOpened,
		SessionsClosed,
		SessionDuration,
		RevenueTotal,
		SessionRejections,
		StationsByStatus,
		ActiveSessions,
		EventSubscribers,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RateLimitedRequests,
	)
}

// ObserveClose records a closed session's duration and billed cost.
func ObserveClose(category string, minutes int, cost decimal.Decimal) {
	SessionsClosed.WithLabelValues(category).Inc()
	SessionDuration.WithLabelValues(category).Observe(float64(minutes))
	RevenueTotal.WithLabelValues(category).Add(cost.InexactFloat64())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
