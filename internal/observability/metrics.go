package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce               sync.Once
	requestsTotal              *prometheus.CounterVec
	requestLatencySeconds      *prometheus.HistogramVec
	xpAwardedTotal             prometheus.Counter
	levelUpsTotal              prometheus.Counter
	notificationsInsertedTotal *prometheus.CounterVec
	emailDispatchTotal         *prometheus.CounterVec
	streamClientsActive        prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engage_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engage_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		xpAwardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engage_xp_awarded_total",
			Help: "Total XP awarded through lesson completions.",
		})

		levelUpsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engage_level_ups_total",
			Help: "Total level-up transitions detected.",
		})

		notificationsInsertedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engage_notifications_inserted_total",
			Help: "Total notifications inserted into the store, by kind.",
		}, []string{"kind"})

		emailDispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engage_email_dispatch_total",
			Help: "Outcomes of fire-and-forget email dispatches.",
		}, []string{"outcome"})

		streamClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engage_stream_clients_active",
			Help: "Currently connected notification stream subscribers.",
		})

		prometheus.MustRegister(
			requestsTotal,
			requestLatencySeconds,
			xpAwardedTotal,
			levelUpsTotal,
			notificationsInsertedTotal,
			emailDispatchTotal,
			streamClientsActive,
		)
	})
}

// Requests exposes the request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the request latency histogram.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// XPAwarded exposes the XP counter.
func XPAwarded() prometheus.Counter {
	RegisterMetrics()
	return xpAwardedTotal
}

// LevelUps exposes the level-up counter.
func LevelUps() prometheus.Counter {
	RegisterMetrics()
	return levelUpsTotal
}

// NotificationsInserted exposes the per-kind notification counter.
func NotificationsInserted() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsInsertedTotal
}

// EmailDispatches exposes the email outcome counter.
func EmailDispatches() *prometheus.CounterVec {
	RegisterMetrics()
	return emailDispatchTotal
}

// StreamClientsActive exposes the live subscriber gauge.
func StreamClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return streamClientsActive
}
