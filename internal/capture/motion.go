package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// motionBlurSize is the Gaussian kernel applied before differencing.
	motionBlurSize = 21
	// motionPixelDelta is the gray level change that counts a pixel as changed.
	motionPixelDelta = 25
	// motionWidth is the width frames are downscaled to before comparison.
	motionWidth = 160
)

// MotionDetector reports how much of the scene changed since the previous frame.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	hasPrev   bool
	mu        sync.Mutex
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage of
// pixels that must change for a frame to count as moving.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Threshold returns the change percentage above which Moved reports true.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// Change compares frame with the previous one and returns the percentage of
// pixels that changed. The first frame only sets the baseline and returns 0.
func (m *MotionDetector) Change(frame *gocv.Mat) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return 0
	}

	cur := prepare(frame)
	defer cur.Close()

	if !m.hasPrev || cur.Rows() != m.prev.Rows() || cur.Cols() != m.prev.Cols() {
		cur.CopyTo(&m.prev)
		m.hasPrev = true
		return 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, m.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, motionPixelDelta, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(mask)
	cur.CopyTo(&m.prev)

	return float64(changed) / float64(mask.Rows()*mask.Cols()) * 100
}

// Moved reports whether frame differs from the previous one by more than the threshold.
func (m *MotionDetector) Moved(frame *gocv.Mat) bool {
	return m.Change(frame) > m.Threshold()
}

// prepare returns a small blurred grayscale copy of frame.
func prepare(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	small := gocv.NewMat()
	defer small.Close()
	if gray.Cols() > motionWidth {
		h := gray.Rows() * motionWidth / gray.Cols()
		gocv.Resize(gray, &small, image.Pt(motionWidth, h), 0, 0, gocv.InterpolationArea)
	} else {
		gray.CopyTo(&small)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(small, &blurred, image.Pt(motionBlurSize, motionBlurSize), 0, 0, gocv.BorderDefault)
	return blurred
}

// Reset drops the baseline so the next frame starts a new comparison.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasPrev = false
}

// Close releases resources used by the motion detector.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prev.Close()
	m.prev = gocv.NewMat()
	m.hasPrev = false
}
