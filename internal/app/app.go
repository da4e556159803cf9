// Package app wires the camera, pose detector and measurement session together.
package app

import (
	"errors"
	"log"
	"sync"

	"github.com/ayusman/tailorcam/internal/capture"
	"github.com/ayusman/tailorcam/internal/detector"
	"github.com/ayusman/tailorcam/internal/metrics"
	"github.com/ayusman/tailorcam/internal/session"
	"github.com/ayusman/tailorcam/internal/store"
)

// Config holds configuration options for the application.
type Config struct {
	// Store, when set, supplies persisted settings that override Session.
	Store    *store.Store
	Metrics  *metrics.Metrics
	Camera   capture.Config
	Detector detector.Config
	Session  session.Config

	// MotionThreshold is the percentage of changed pixels needed to run the
	// pose detector while nobody is in view. Zero runs it on every frame.
	MotionThreshold float64
}

// App is the main application that runs the measurement pipeline.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	motion   *capture.MotionDetector
	session  *session.Session
	metrics  *metrics.Metrics
	enabled  bool
	vacant   bool // no body in the last detected frame
	mu       sync.RWMutex
	stopCh   chan struct{}
	doneCh   chan struct{}

	frameMu sync.RWMutex
	jpeg    []byte
	seq     uint64

	listenersMu     sync.RWMutex
	listeners       []func(session.Measurement)
	heightListeners []func(float64)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.Metrics == nil {
		config.Metrics = metrics.New()
	}
	if config.Store != nil {
		applySettings(config.Store, &config.Session)
	}

	a := &App{
		config:  config,
		camera:  capture.NewCamera(config.Camera),
		session: session.New(config.Session),
		metrics: config.Metrics,
	}
	if config.MotionThreshold > 0 {
		a.motion = capture.NewMotionDetector(config.MotionThreshold)
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe pose detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	a.metrics.SetReferenceHeight(a.session.ReferenceHeight())
	a.session.OnCountdown(func() {
		a.metrics.CountdownsStarted.Add(1)
	})
	a.session.OnMeasured(a.handleMeasured)
	a.session.OnHeightChanged(a.handleHeightChanged)
	a.session.OnUnmeasurable(func(err error) {
		a.metrics.Unmeasurable.Add(1)
		log.Printf("Measurement failed: %v", err)
	})

	return a
}

// applySettings overrides session values with those stored in s.
func applySettings(s *store.Store, cfg *session.Config) {
	settings := s.Settings()

	if h, err := settings.GetFloat(store.KeyReferenceHeight); err == nil {
		if session.ValidateHeight(h) == nil {
			cfg.ReferenceHeightCm = h
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Ignoring stored reference height: %v", err)
	}

	if c, err := settings.GetFloat(store.KeyCalibration); err == nil {
		cfg.Calibration = c
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Ignoring stored calibration: %v", err)
	}
}

func (a *App) handleMeasured(m session.Measurement) {
	a.metrics.ObserveMeasurement(m.Result.Centimeters.ShoulderWidth)
	log.Printf("Measured shoulders %s, sleeve %s, length %s, hem %s",
		m.Display.ShoulderWidth, m.Display.SleeveLength, m.Display.TotalLength, m.Display.HemWidth)

	a.listenersMu.RLock()
	listeners := append([]func(session.Measurement)(nil), a.listeners...)
	a.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(m)
	}
}

func (a *App) handleHeightChanged(cm float64) {
	a.metrics.SetReferenceHeight(cm)

	a.listenersMu.RLock()
	listeners := append([]func(float64)(nil), a.heightListeners...)
	a.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(cm)
	}
}

// OnHeightChanged registers fn to run whenever the reference height changes.
func (a *App) OnHeightChanged(fn func(cm float64)) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.heightListeners = append(a.heightListeners, fn)
}

// OnMeasured registers fn to run after every successful measurement.
func (a *App) OnMeasured(fn func(session.Measurement)) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// SetEnabled enables or disables frame processing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frame processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the pose detector, closing the previous one.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	old := a.detector
	a.detector = d
	a.mu.Unlock()

	if old != nil && old != d {
		if err := old.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
}

// SetCamera replaces the camera. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Start begins the measurement pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Measurement pipeline started")
	return nil
}

// Stop halts the pipeline and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
	if a.motion != nil {
		a.motion.Reset()
	}

	log.Println("Measurement pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Session returns the measurement session.
func (a *App) Session() *session.Session {
	return a.session
}

// Metrics returns the metrics collector.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// LatestJPEG returns the most recent annotated frame.
func (a *App) LatestJPEG() ([]byte, uint64, bool) {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.jpeg, a.seq, a.jpeg != nil
}

func (a *App) publish(data []byte) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	a.jpeg = data
	a.seq++
}
