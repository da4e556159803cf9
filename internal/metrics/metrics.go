// Package metrics exposes pipeline and measurement counters in Prometheus format.
package metrics

import (
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	// Frame pipeline
	FramesRead      atomic.Uint64
	FramesProcessed atomic.Uint64
	FramesSkipped   atomic.Uint64
	ReadErrors      atomic.Uint64
	DetectErrors    atomic.Uint64
	PosesDetected   atomic.Uint64

	// Measurement session
	CountdownsStarted atomic.Uint64
	Measurements      atomic.Uint64
	Unmeasurable      atomic.Uint64

	// Latency of the last processed frame in ms
	ProcessLatencyMs atomic.Uint64

	// Stream clients
	StreamClients atomic.Int64
	EventClients  atomic.Int64

	referenceHeight atomic.Uint64 // float64 bits
	lastShoulderCm  atomic.Uint64 // float64 bits

	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	counters := []struct {
		name, help string
		value      *atomic.Uint64
	}{
		{"tailorcam_frames_read_total", "Total frames read from the camera", &m.FramesRead},
		{"tailorcam_frames_processed_total", "Total frames run through the pose detector", &m.FramesProcessed},
		{"tailorcam_frames_skipped_total", "Total still frames not sent to the pose detector", &m.FramesSkipped},
		{"tailorcam_read_errors_total", "Total camera read errors", &m.ReadErrors},
		{"tailorcam_detect_errors_total", "Total pose detector errors", &m.DetectErrors},
		{"tailorcam_poses_detected_total", "Total frames with a detected body", &m.PosesDetected},
		{"tailorcam_countdowns_started_total", "Total measurement countdowns started", &m.CountdownsStarted},
		{"tailorcam_measurements_total", "Total successful measurements", &m.Measurements},
		{"tailorcam_unmeasurable_total", "Total captures that could not be measured", &m.Unmeasurable},
	}
	for _, c := range counters {
		v := c.value
		m.registry.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{Name: c.name, Help: c.help},
			func() float64 { return float64(v.Load()) },
		))
	}

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "tailorcam_process_latency_ms",
			Help: "Processing latency of the last frame in milliseconds",
		},
		func() float64 { return float64(m.ProcessLatencyMs.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "tailorcam_stream_clients",
			Help: "Number of connected MJPEG stream clients",
		},
		func() float64 { return float64(m.StreamClients.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "tailorcam_event_clients",
			Help: "Number of connected WebSocket event clients",
		},
		func() float64 { return float64(m.EventClients.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "tailorcam_reference_height_cm",
			Help: "Reference height used for the next measurement",
		},
		func() float64 { return math.Float64frombits(m.referenceHeight.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "tailorcam_last_shoulder_width_cm",
			Help: "Shoulder width of the latest measurement",
		},
		func() float64 { return math.Float64frombits(m.lastShoulderCm.Load()) },
	))
}

// SetReferenceHeight records the current reference height.
func (m *Metrics) SetReferenceHeight(cm float64) {
	m.referenceHeight.Store(math.Float64bits(cm))
}

// ObserveMeasurement counts a successful measurement.
func (m *Metrics) ObserveMeasurement(shoulderCm float64) {
	m.Measurements.Add(1)
	m.lastShoulderCm.Store(math.Float64bits(shoulderCm))
}

// UpdateProcessLatency updates the processing latency
func (m *Metrics) UpdateProcessLatency(d time.Duration) {
	m.ProcessLatencyMs.Store(uint64(d.Milliseconds()))
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
