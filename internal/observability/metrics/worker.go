package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	reindexTotal    *prometheus.CounterVec
	reindexDuration *prometheus.HistogramVec
	reindexInFlight prometheus.Gauge
	indexedBlocks   *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	reindexTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jar",
			Subsystem: "worker",
			Name:      "reindex_total",
			Help:      "Total corpus reindex runs by status.",
		},
		[]string{"service", "status"},
	)
	reindexDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jar",
			Subsystem: "worker",
			Name:      "reindex_duration_seconds",
			Help:      "Corpus reindex duration in seconds by status.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service", "status"},
	)
	reindexInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jar",
			Subsystem: "worker",
			Name:      "reindex_in_flight",
			Help:      "Number of in-flight reindex runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	indexedBlocks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jar",
			Subsystem: "worker",
			Name:      "indexed_blocks",
			Help:      "Distribution of indexed text blocks per reindex run.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"service"},
	)

	registry.MustRegister(reindexTotal, reindexDuration, reindexInFlight, indexedBlocks)

	return &WorkerMetrics{
		registry:        registry,
		reindexTotal:    reindexTotal,
		reindexDuration: reindexDuration,
		reindexInFlight: reindexInFlight,
		indexedBlocks:   indexedBlocks,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartReindex() {
	m.reindexInFlight.Inc()
}

func (m *WorkerMetrics) FinishReindex(service string, blocks int, duration time.Duration, err error) {
	m.reindexInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.reindexTotal.WithLabelValues(service, status).Inc()
	m.reindexDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err == nil {
		m.indexedBlocks.WithLabelValues(service).Observe(float64(blocks))
	}
}
