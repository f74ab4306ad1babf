package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request processing time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Number of active WebSocket sessions",
		},
	)

	envelopesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_envelopes_total",
			Help: "Envelopes fanned out to room members, by kind",
		},
		[]string{"kind"},
	)

	envelopesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_envelopes_dropped_total",
			Help: "Envelopes dropped before delivery, by reason",
		},
		[]string{"reason"},
	)

	signalingRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_rejections_total",
			Help: "Call signals rejected by the per-room state machine, by reason",
		},
		[]string{"reason"},
	)

	dropsUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drop_files_uploaded_total",
			Help: "Files accepted by the drop endpoint",
		},
	)

	dropsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drop_files_claimed_total",
			Help: "Drop files downloaded through their one-shot link",
		},
	)

	keysGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_keys_generated_total",
			Help: "Access keys issued, by plan",
		},
		[]string{"plan"},
	)
)

func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

func RecordEnvelopeRelayed(kind string) {
	envelopesRelayed.WithLabelValues(kind).Inc()
}

func RecordEnvelopeDropped(reason string) {
	envelopesDropped.WithLabelValues(reason).Inc()
}

func RecordSignalingRejection(reason string) {
	signalingRejections.WithLabelValues(reason).Inc()
}

func RecordDropUploaded() {
	dropsUploaded.Inc()
}

func RecordDropClaimed() {
	dropsClaimed.Inc()
}

func RecordKeyGenerated(plan string) {
	keysGenerated.WithLabelValues(plan).Inc()
}
