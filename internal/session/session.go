// Package session runs the countdown that triggers a measurement once the
// user holds still inside the guide box.
package session

import (
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/tailorcam/internal/detector"
	"github.com/ayusman/tailorcam/internal/guide"
	"github.com/ayusman/tailorcam/internal/measure"
)

// Phase is the state of the measurement cycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseCountdown Phase = "countdown"
	PhaseCapturing Phase = "capturing"
)

// User facing messages.
const (
	MsgNoBody       = "No body detected. Make sure your whole body is in the frame."
	MsgAlign        = "Align both shoulders inside the guide box."
	MsgDone         = "Done. See the results below."
	MsgUnmeasurable = "Unable to measure. Please try again."
)

// Default timing and reference values.
const (
	DefaultCountdown       = 3
	DefaultStep            = time.Second
	DefaultCaptureDelay    = 2 * time.Second
	DefaultReferenceHeight = 170.0
)

// ErrInvalidHeight is returned for a reference height that is not a positive finite number.
var ErrInvalidHeight = errors.New("reference height must be a positive number")

// Config holds the session parameters.
type Config struct {
	ReferenceHeightCm float64
	Calibration       float64
	Guide             guide.Guide
	// Countdown is the number of Step ticks shown before capture.
	Countdown    int
	Step         time.Duration
	CaptureDelay time.Duration
}

// DefaultConfig returns the configuration of the measurement screen.
func DefaultConfig() Config {
	return Config{
		ReferenceHeightCm: DefaultReferenceHeight,
		Calibration:       measure.DefaultCalibration,
		Guide:             guide.Default(),
		Countdown:         DefaultCountdown,
		Step:              DefaultStep,
		CaptureDelay:      DefaultCaptureDelay,
	}
}

// Measurement is a completed measurement cycle.
type Measurement struct {
	ID                string          `json:"id"`
	TakenAt           time.Time       `json:"taken_at"`
	ReferenceHeightCm float64         `json:"reference_height_cm"`
	Result            *measure.Result `json:"result"`
	Display           measure.Display `json:"display"`
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	Version           uint64       `json:"version"`
	Phase             Phase        `json:"phase"`
	Countdown         int          `json:"countdown"`
	Message           string       `json:"message"`
	Feedback          string       `json:"feedback"`
	Error             string       `json:"error,omitempty"`
	ReferenceHeightCm float64      `json:"reference_height_cm"`
	Measurement       *Measurement `json:"measurement,omitempty"`
}

// Session owns the reference height, the latest landmark snapshot and the
// latest measurement. It is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	config Config
	calc   *measure.Calculator

	height    float64
	phase     Phase
	started   time.Time
	remaining int
	feedback  string
	errMsg    string
	last      detector.Landmarks
	lastSize  measure.FrameSize
	latest    *Measurement
	version   uint64

	onMeasured     func(Measurement)
	onUnmeasurable func(error)
	onCountdown    func()
	onHeight       func(float64)
}

// New creates a Session. Zero fields in config take their default values.
func New(config Config) *Session {
	def := DefaultConfig()
	if config.Countdown <= 0 {
		config.Countdown = def.Countdown
	}
	if config.Step <= 0 {
		config.Step = def.Step
	}
	if config.CaptureDelay <= 0 {
		config.CaptureDelay = def.CaptureDelay
	}
	if config.Guide == (guide.Guide{}) {
		config.Guide = def.Guide
	}
	if ValidateHeight(config.ReferenceHeightCm) != nil {
		config.ReferenceHeightCm = def.ReferenceHeightCm
	}

	return &Session{
		config: config,
		calc:   measure.NewCalculator(config.Calibration),
		height: config.ReferenceHeightCm,
		phase:  PhaseIdle,
	}
}

// ValidateHeight returns ErrInvalidHeight unless cm is a positive finite number.
func ValidateHeight(cm float64) error {
	if !(cm > 0) || math.IsInf(cm, 0) {
		return ErrInvalidHeight
	}
	return nil
}

// OnMeasured sets the callback run after each successful measurement.
func (s *Session) OnMeasured(fn func(Measurement)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMeasured = fn
}

// OnUnmeasurable sets the callback run when a cycle ends without a result.
func (s *Session) OnUnmeasurable(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnmeasurable = fn
}

// OnCountdown sets the callback run whenever a countdown starts.
func (s *Session) OnCountdown(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCountdown = fn
}

// OnHeightChanged sets the callback run after the reference height changes.
func (s *Session) OnHeightChanged(fn func(cm float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onHeight = fn
}

// Calculator returns the calculator used for measurements.
func (s *Session) Calculator() *measure.Calculator {
	return s.calc
}

// Guide returns the guide box used to gate the countdown.
func (s *Session) Guide() guide.Guide {
	return s.config.Guide
}

// ReferenceHeight returns the current reference height in centimeters.
func (s *Session) ReferenceHeight() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

// SetReferenceHeight updates the height used by the next measurement.
func (s *Session) SetReferenceHeight(cm float64) error {
	if err := ValidateHeight(cm); err != nil {
		return err
	}

	s.mu.Lock()
	if s.height == cm {
		s.mu.Unlock()
		return nil
	}
	s.height = cm
	s.version++
	fn := s.onHeight
	s.mu.Unlock()

	if fn != nil {
		fn(cm)
	}
	return nil
}

// Latest returns the most recent measurement, or nil if none was taken.
func (s *Session) Latest() *Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:           s.version,
		Phase:             s.phase,
		Feedback:          s.feedback,
		Error:             s.errMsg,
		ReferenceHeightCm: s.height,
		Measurement:       s.latest,
	}
	switch s.phase {
	case PhaseCountdown:
		snap.Countdown = s.remaining
		snap.Message = strconv.Itoa(s.remaining)
	case PhaseCapturing:
		snap.Message = MsgDone
	}
	return snap
}

// Observe feeds one frame's detection result into the session.
// Nil landmarks mean no body was detected in the frame.
func (s *Session) Observe(now time.Time, landmarks detector.Landmarks, size measure.FrameSize) Snapshot {
	return s.update(func(events *[]func()) {
		if landmarks != nil {
			s.last = landmarks
			s.lastSize = size
		}

		s.advanceLocked(now, events)

		// A capture in progress is not interrupted by movement.
		if s.phase == PhaseCapturing {
			return
		}

		if landmarks == nil {
			s.feedback = MsgNoBody
			s.resetLocked()
			return
		}

		switch s.config.Guide.Check(landmarks, size) {
		case guide.InPosition:
			s.feedback = ""
			if s.phase == PhaseIdle {
				s.phase = PhaseCountdown
				s.started = now
				s.remaining = s.config.Countdown
				if fn := s.onCountdown; fn != nil {
					*events = append(*events, fn)
				}
			}
		case guide.OutOfPosition:
			s.feedback = MsgAlign
			s.resetLocked()
		default:
			s.feedback = MsgNoBody
			s.resetLocked()
		}
	})
}

// Advance moves the countdown forward without a new frame.
func (s *Session) Advance(now time.Time) Snapshot {
	return s.update(func(events *[]func()) {
		s.advanceLocked(now, events)
	})
}

// update applies fn under the lock, bumps the version if anything visible
// changed and runs queued callbacks after unlocking.
func (s *Session) update(fn func(events *[]func())) Snapshot {
	var events []func()

	s.mu.Lock()
	before := s.snapshotLocked()
	fn(&events)
	after := s.snapshotLocked()
	if after != before {
		s.version++
		after.Version = s.version
	}
	s.mu.Unlock()

	for _, ev := range events {
		ev()
	}
	return after
}

func (s *Session) resetLocked() {
	if s.phase == PhaseCountdown {
		s.phase = PhaseIdle
		s.remaining = 0
	}
}

func (s *Session) advanceLocked(now time.Time, events *[]func()) {
	countdown := time.Duration(s.config.Countdown) * s.config.Step

	if s.phase == PhaseCountdown {
		elapsed := now.Sub(s.started)
		if elapsed < countdown {
			s.remaining = s.config.Countdown - int(elapsed/s.config.Step)
			return
		}
		s.phase = PhaseCapturing
		s.remaining = 0
	}

	if s.phase == PhaseCapturing && !now.Before(s.started.Add(countdown+s.config.CaptureDelay)) {
		s.measureLocked(now, events)
		s.phase = PhaseIdle
	}
}

func (s *Session) measureLocked(now time.Time, events *[]func()) {
	var (
		res *measure.Result
		err error
	)
	if s.last == nil {
		err = measure.ErrMissingLandmark
	} else {
		res, err = s.calc.Compute(s.last, s.lastSize, s.height)
	}

	if err != nil {
		// The previous result stays in place.
		s.errMsg = MsgUnmeasurable + " (" + err.Error() + ")"
		if fn := s.onUnmeasurable; fn != nil {
			*events = append(*events, func() { fn(err) })
		}
		return
	}

	m := &Measurement{
		ID:                uuid.New().String(),
		TakenAt:           now,
		ReferenceHeightCm: s.height,
		Result:            res,
		Display:           res.Display(),
	}
	s.latest = m
	s.errMsg = ""
	if fn := s.onMeasured; fn != nil {
		measured := *m
		*events = append(*events, func() { fn(measured) })
	}
}
