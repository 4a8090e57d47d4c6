package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beautydesk_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beautydesk_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	notificationsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beautydesk_notifications_enqueued_total",
			Help: "Notifications accepted into the priority queue",
		},
		[]string{"priority", "category"},
	)

	notificationsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beautydesk_notifications_suppressed_total",
			Help: "Notifications dropped before queuing by the preference filter",
		},
		[]string{"reason"},
	)

	notificationsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beautydesk_notifications_deduplicated_total",
			Help: "Notifications dropped as duplicates within the dedup window",
		},
	)

	channelDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beautydesk_channel_deliveries_total",
			Help: "Per-channel delivery attempts by outcome",
		},
		[]string{"channel", "outcome"},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beautydesk_queue_depth",
			Help: "Notifications currently waiting in the priority queue",
		},
	)

	activeNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beautydesk_active_notifications",
			Help: "Notifications currently held in the active registry",
		},
	)

	staleEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beautydesk_stale_evictions_total",
			Help: "Registry entries removed by the staleness sweep",
		},
	)

	rateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beautydesk_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"key"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records HTTP request metrics.
func RecordRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEnqueued records a notification accepted into the queue.
func RecordEnqueued(priority, category string) {
	notificationsEnqueued.WithLabelValues(priority, category).Inc()
}

// RecordSuppressed records a notification dropped by the preference filter.
func RecordSuppressed(reason string) {
	notificationsSuppressed.WithLabelValues(reason).Inc()
}

// RecordDeduplicated records a notification dropped as a duplicate.
func RecordDeduplicated() {
	notificationsDeduplicated.Inc()
}

// RecordDelivery records a single channel delivery attempt.
func RecordDelivery(channel, outcome string) {
	channelDeliveries.WithLabelValues(channel, outcome).Inc()
}

// SetQueueDepth sets the current queue depth.
func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

// SetActiveNotifications sets the current registry size.
func SetActiveNotifications(n int) {
	activeNotifications.Set(float64(n))
}

// RecordStaleEvictions records entries removed by a sweep pass.
func RecordStaleEvictions(n int) {
	staleEvictions.Add(float64(n))
}

// RecordRateLimitRejection records a rate limit rejection.
func RecordRateLimitRejection(key string) {
	rateLimitRejections.WithLabelValues(key).Inc()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		RecordRequest(r.Method, r.URL.Path, wrapped.status, time.Since(start))
	})
}
