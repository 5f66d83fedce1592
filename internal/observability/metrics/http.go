package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	resolutionTotal    *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	refusalTotal       *prometheus.CounterVec
	evidenceRecords    *prometheus.HistogramVec
	rateLimitedTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jar",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jar",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jar",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	resolutionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jar",
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Total resolved queries by answering strategy.",
		},
		[]string{"service", "strategy"},
	)
	resolutionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jar",
			Subsystem: "resolver",
			Name:      "resolution_duration_seconds",
			Help:      "Query resolution duration in seconds by strategy.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "strategy"},
	)
	refusalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jar",
			Subsystem: "resolver",
			Name:      "refusals_total",
			Help:      "Total refused queries by refusal reason.",
		},
		[]string{"service", "reason"},
	)
	evidenceRecords := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jar",
			Subsystem: "resolver",
			Name:      "evidence_records",
			Help:      "Distribution of cited proposal records per answer.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "strategy"},
	)
	rateLimitedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jar",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter.",
		},
		[]string{"service", "path"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		resolutionTotal,
		resolutionDuration,
		refusalTotal,
		evidenceRecords,
		rateLimitedTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		resolutionTotal:    resolutionTotal,
		resolutionDuration: resolutionDuration,
		refusalTotal:       refusalTotal,
		evidenceRecords:    evidenceRecords,
		rateLimitedTotal:   rateLimitedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordResolution observes one resolved query. reason is empty for
// non-refusal answers.
func (m *HTTPServerMetrics) RecordResolution(service, strategy, reason string, evidenceCount int, duration time.Duration) {
	if strategy == "" {
		strategy = "unknown"
	}
	m.resolutionTotal.WithLabelValues(service, strategy).Inc()
	m.resolutionDuration.WithLabelValues(service, strategy).Observe(duration.Seconds())
	m.evidenceRecords.WithLabelValues(service, strategy).Observe(float64(evidenceCount))
	if reason != "" {
		m.refusalTotal.WithLabelValues(service, reason).Inc()
	}
}

func (m *HTTPServerMetrics) RecordRateLimited(service, path string) {
	m.rateLimitedTotal.WithLabelValues(service, path).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
