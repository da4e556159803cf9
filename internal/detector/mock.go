package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu        sync.Mutex
	landmarks Landmarks
	err       error
	calls     int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetLandmarks sets the landmarks that will be returned by Detect.
func (m *MockDetector) SetLandmarks(l Landmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.landmarks = l
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured landmarks or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Landmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.landmarks.Clone(), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// StandingPose returns a frontal standing pose centered in the frame,
// with both shoulders inside the default guide box.
func StandingPose() Landmarks {
	return Landmarks{
		Nose:          {X: 0.50, Y: 0.20, Visibility: 0.99},
		LeftEye:       {X: 0.52, Y: 0.18, Visibility: 0.99},
		RightEye:      {X: 0.48, Y: 0.18, Visibility: 0.99},
		LeftShoulder:  {X: 0.60, Y: 0.30, Visibility: 0.98},
		RightShoulder: {X: 0.40, Y: 0.30, Visibility: 0.98},
		LeftElbow:     {X: 0.64, Y: 0.45, Visibility: 0.95},
		RightElbow:    {X: 0.36, Y: 0.45, Visibility: 0.95},
		LeftWrist:     {X: 0.66, Y: 0.60, Visibility: 0.93},
		RightWrist:    {X: 0.34, Y: 0.60, Visibility: 0.93},
		LeftHip:       {X: 0.56, Y: 0.60, Visibility: 0.97},
		RightHip:      {X: 0.44, Y: 0.60, Visibility: 0.97},
		LeftKnee:      {X: 0.56, Y: 0.78, Visibility: 0.90},
		RightKnee:     {X: 0.44, Y: 0.78, Visibility: 0.90},
		LeftAnkle:     {X: 0.56, Y: 0.95, Visibility: 0.85},
		RightAnkle:    {X: 0.44, Y: 0.95, Visibility: 0.85},
	}
}

// OffCenterPose returns the standing pose shifted so that the shoulders
// fall outside the default guide box.
func OffCenterPose() Landmarks {
	pose := StandingPose()
	for idx, lm := range pose {
		lm.X -= 0.25
		pose[idx] = lm
	}
	return pose
}
