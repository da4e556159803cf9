// Package guide checks whether the user stands inside the on-screen guideline box.
package guide

import (
	"github.com/ayusman/tailorcam/internal/detector"
	"github.com/ayusman/tailorcam/internal/measure"
)

// Status is the outcome of a position check.
type Status int

const (
	// NoBody means the shoulders were not detected.
	NoBody Status = iota
	// OutOfPosition means a shoulder lies outside the guide box.
	OutOfPosition
	// InPosition means both shoulders are inside the guide box.
	InPosition
)

func (s Status) String() string {
	switch s {
	case InPosition:
		return "in_position"
	case OutOfPosition:
		return "out_of_position"
	default:
		return "no_body"
	}
}

// Guide describes the vertical guide lines as fractions of the frame width.
type Guide struct {
	Left  float64
	Right float64
	// LeftShoulderOffset is subtracted, in pixels, from the left shoulder X
	// before comparing it with the left line.
	LeftShoulderOffset float64
}

// Default returns the guide box used by the measurement screen.
func Default() Guide {
	return Guide{
		Left:               0.3,
		Right:              0.7,
		LeftShoulderOffset: 0.1,
	}
}

// Lines returns the pixel X of the left and right guide lines.
func (g Guide) Lines(width int) (left, right float64) {
	w := float64(width)
	return w * g.Left, w * g.Right
}

// Check reports whether the shoulders are inside the guide box.
func (g Guide) Check(landmarks detector.Landmarks, size measure.FrameSize) Status {
	ls, okL := landmarks[detector.LeftShoulder]
	rs, okR := landmarks[detector.RightShoulder]
	if !okL || !okR {
		return NoBody
	}

	left, right := g.Lines(size.Width)
	leftX := measure.ToPixel(ls, size).X - g.LeftShoulderOffset
	rightX := measure.ToPixel(rs, size).X

	if leftX > left && rightX < right {
		return InPosition
	}
	return OutOfPosition
}
