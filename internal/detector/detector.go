package detector

import "gocv.io/x/gocv"

// Detector defines the interface for pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the body landmarks.
	// Returns nil if no body is detected.
	Detect(frame *gocv.Mat) (Landmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// ModelComplexity selects the pose model variant (0, 1 or 2).
	ModelComplexity int

	// SmoothLandmarks filters landmarks across frames to reduce jitter.
	SmoothLandmarks bool

	// EnableSegmentation additionally requests a segmentation mask.
	EnableSegmentation bool

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		ModelComplexity:    1,
		SmoothLandmarks:    true,
		EnableSegmentation: false,
		MinConfidence:      0.5,
		MinTrackingConf:    0.5,
	}
}
