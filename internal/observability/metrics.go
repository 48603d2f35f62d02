package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "t3codec",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "t3codec",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	frames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "t3codec",
			Name:      "frames_total",
			Help:      "Frames processed by the codec pipeline.",
		},
		[]string{"op", "profile", "result"},
	)
	frameDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "t3codec",
			Name:      "frame_duration_seconds",
			Help:      "Codec pipeline duration per frame in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"op"},
	)
	rsBlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "t3codec",
			Subsystem: "rs",
			Name:      "blocks_total",
			Help:      "RS blocks decoded, by payload length.",
		},
		[]string{"k", "result"},
	)
	rsCorrected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "t3codec",
			Subsystem: "rs",
			Name:      "symbols_corrected_total",
			Help:      "Symbols corrected by the RS decoder, by payload length.",
		},
		[]string{"k"},
	)
	headerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "t3codec",
			Subsystem: "header",
			Name:      "failures_total",
			Help:      "Superframe header recovery failures.",
		},
		[]string{"reason"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, frames, frameDuration, rsBlocks, rsCorrected, headerFailures)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordFrame counts one encode or decode call.
func RecordFrame(op, profile string, success bool, duration time.Duration) {
	RegisterMetrics()
	result := "ok"
	if !success {
		result = "error"
	}
	frames.WithLabelValues(op, profile, result).Inc()
	frameDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordRSBlocks counts decoded blocks and corrected symbols for one k.
func RecordRSBlocks(k int, blocks int, corrected int, success bool) {
	RegisterMetrics()
	kLabel := strconv.Itoa(k)
	result := "ok"
	if !success {
		result = "error"
	}
	rsBlocks.WithLabelValues(kLabel, result).Add(float64(blocks))
	if corrected > 0 {
		rsCorrected.WithLabelValues(kLabel).Add(float64(corrected))
	}
}

func RecordHeaderFailure(reason string) {
	RegisterMetrics()
	headerFailures.WithLabelValues(reason).Inc()
}
