package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all pipeline metrics
type Metrics struct {
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionFailures *prometheus.CounterVec
	InferenceLatency   prometheus.Histogram
	PipelineLatency    prometheus.Histogram
	UploadBytes        prometheus.Histogram
	StagedFilesSwept   prometheus.Counter
}

// New creates and registers all pipeline metrics
func New(namespace string) *Metrics {
	return &Metrics{
		ExtractionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Total number of extraction requests by terminal status",
		}, []string{"status"}),
		ExtractionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Total number of failed extractions by error kind",
		}, []string{"kind"}),
		InferenceLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Time spent waiting on the inference service",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		PipelineLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End to end extraction pipeline duration",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		UploadBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_size_bytes",
			Help:      "Size of accepted prescription uploads",
			Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 8),
		}),
		StagedFilesSwept: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staged_files_swept_total",
			Help:      "Staged files removed by the sweeper backstop",
		}),
	}
}

// Observation helpers are nil-safe so callers constructed without metrics
// (tests, tools) need no guards.

func (m *Metrics) ObserveExtraction(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(status).Inc()
	m.PipelineLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveFailure(kind string) {
	if m == nil {
		return
	}
	m.ExtractionFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveInference(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.InferenceLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveUpload(size int64) {
	if m == nil {
		return
	}
	m.UploadBytes.Observe(float64(size))
}

func (m *Metrics) AddSweptFiles(n int) {
	if m == nil {
		return
	}
	m.StagedFilesSwept.Add(float64(n))
}
