package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "face_attendance",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	RecognitionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "face_attendance",
		Name:      "recognition_outcomes_total",
		Help:      "Recognition attempts by outcome",
	}, []string{"outcome"})

	AttendanceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "face_attendance",
		Name:      "attendance_writes_total",
		Help:      "Attendance ledger writes by result",
	}, []string{"result"})

	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "face_attendance",
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of recognition provider calls",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"operation", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "face_attendance",
		Name:      "ws_connections",
		Help:      "Number of active live feed connections",
	})
)

// ObserveProvider matches luxand.ObserveFunc.
func ObserveProvider(operation string, status int, elapsed time.Duration) {
	ProviderRequestDuration.WithLabelValues(operation, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
