// Package metrics holds Prometheus instruments for a conversion run.
// Instruments live on a private registry so a run can be exported as a
// node-exporter textfile without a long-lived HTTP endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for one run.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	RunInfo       *prometheus.GaugeVec
	FramesRead    prometheus.Counter
	FramesWritten prometheus.Counter
	FrameSize     prometheus.Histogram
	PayloadBytes  prometheus.Gauge
	Warnings      *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	RunDuration   prometheus.Gauge
	RunSucceeded  prometheus.Gauge
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RunInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "framepack_run_info",
			Help: "Constant 1 labelled with the run identity",
		}, []string{"run_id", "source"}),
		FramesRead: f.NewCounter(prometheus.CounterOpts{
			Name: "framepack_frames_read_total",
			Help: "Frames decoded from the source",
		}),
		FramesWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "framepack_frames_written_total",
			Help: "Encoded frames appended to the payload",
		}),
		FrameSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "framepack_frame_size_bytes",
			Help:    "Size of encoded frames in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to ~2MB
		}),
		PayloadBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "framepack_payload_bytes",
			Help: "Bytes written to the frames payload",
		}),
		Warnings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "framepack_warnings_total",
			Help: "Recoverable problems encountered during the run",
		}, []string{"kind"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "framepack_stage_duration_seconds",
			Help:    "Per-frame time spent in each stage",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}, []string{"stage"}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "framepack_run_duration_seconds",
			Help: "Wall time of the run",
		}),
		RunSucceeded: f.NewGauge(prometheus.GaugeOpts{
			Name: "framepack_run_succeeded",
			Help: "1 if the run finished in the Done state, 0 otherwise",
		}),
	}
}

// Registry returns the registry holding the run's metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRun labels the run.
func (m *Metrics) RecordRun(runID, source string) {
	if m == nil {
		return
	}
	m.RunInfo.WithLabelValues(runID, source).Set(1)
}

// RecordRead counts one decoded frame.
func (m *Metrics) RecordRead() {
	if m == nil {
		return
	}
	m.FramesRead.Inc()
}

// RecordWrite counts one appended frame of size bytes.
func (m *Metrics) RecordWrite(size int, payloadTotal uint64) {
	if m == nil {
		return
	}
	m.FramesWritten.Inc()
	m.FrameSize.Observe(float64(size))
	m.PayloadBytes.Set(float64(payloadTotal))
}

// RecordWarning counts a recoverable problem of the given kind.
func (m *Metrics) RecordWarning(kind string) {
	if m == nil {
		return
	}
	m.Warnings.WithLabelValues(kind).Inc()
}

// ObserveStage records time spent in a per-frame stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordResult records the outcome of the run.
func (m *Metrics) RecordResult(ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Set(d.Seconds())
	if ok {
		m.RunSucceeded.Set(1)
	} else {
		m.RunSucceeded.Set(0)
	}
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
