// Package measure converts pose landmarks into garment measurements in centimeters.
package measure

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/tailorcam/internal/detector"
)

// DefaultCalibration approximates the ratio between full standing height and
// the nose-to-hip-midpoint pixel span. It is empirical; keep it at 1.9 unless
// outputs no longer need to be comparable with earlier measurements.
const DefaultCalibration = 1.9

var (
	// ErrMissingLandmark is returned when a required landmark was not detected.
	ErrMissingLandmark = errors.New("missing landmark")
	// ErrDegenerateScale is returned when no finite positive scale can be derived.
	ErrDegenerateScale = errors.New("degenerate scale")
)

// Required lists the landmarks every measurement depends on.
var Required = []detector.Index{
	detector.Nose,
	detector.LeftShoulder,
	detector.RightShoulder,
	detector.LeftWrist,
	detector.RightWrist,
	detector.LeftHip,
	detector.RightHip,
}

// IsUnmeasurable reports whether err means the landmarks could not be measured.
func IsUnmeasurable(err error) bool {
	return errors.Is(err, ErrMissingLandmark) || errors.Is(err, ErrDegenerateScale)
}

// FrameSize is the pixel size of the frame the landmarks were detected in.
type FrameSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a pixel coordinate in the mirrored display frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(a.vec(), b.vec()))
}

func midpoint(a, b Point) Point {
	m := r2.Scale(0.5, r2.Add(a.vec(), b.vec()))
	return Point{X: m.X, Y: m.Y}
}

// ToPixel converts a normalized landmark to display pixels.
// The feed is mirrored horizontally, so X is flipped; Y is not.
func ToPixel(l detector.Landmark, size FrameSize) Point {
	return Point{
		X: (1 - l.X) * float64(size.Width),
		Y: l.Y * float64(size.Height),
	}
}

// Points holds the pixel positions used for the overlay.
type Points struct {
	LeftShoulder  Point `json:"left_shoulder"`
	RightShoulder Point `json:"right_shoulder"`
	LeftWrist     Point `json:"left_wrist"`
	RightWrist    Point `json:"right_wrist"`
	LeftHip       Point `json:"left_hip"`
	RightHip      Point `json:"right_hip"`
}

// Lengths groups the four measured lengths.
type Lengths struct {
	ShoulderWidth float64 `json:"shoulder_width"`
	SleeveLength  float64 `json:"sleeve_length"`
	TotalLength   float64 `json:"total_length"`
	HemWidth      float64 `json:"hem_width"`
}

func (l Lengths) scaled(f float64) Lengths {
	return Lengths{
		ShoulderWidth: l.ShoulderWidth * f,
		SleeveLength:  l.SleeveLength * f,
		TotalLength:   l.TotalLength * f,
		HemWidth:      l.HemWidth * f,
	}
}

// Result is a completed measurement.
type Result struct {
	Centimeters Lengths `json:"centimeters"`
	Pixels      Lengths `json:"pixels"`
	Points      Points  `json:"points"`
	// Scale is the centimeters-per-pixel factor.
	Scale float64   `json:"scale"`
	Frame FrameSize `json:"frame"`
}

// Display holds the centimeter values formatted with two decimals.
type Display struct {
	ShoulderWidth string `json:"shoulder_width"`
	SleeveLength  string `json:"sleeve_length"`
	TotalLength   string `json:"total_length"`
	HemWidth      string `json:"hem_width"`
}

func formatCm(v float64) string {
	return fmt.Sprintf("%.2f cm", v)
}

// Display formats the centimeter values for presentation.
func (r *Result) Display() Display {
	return Display{
		ShoulderWidth: formatCm(r.Centimeters.ShoulderWidth),
		SleeveLength:  formatCm(r.Centimeters.SleeveLength),
		TotalLength:   formatCm(r.Centimeters.TotalLength),
		HemWidth:      formatCm(r.Centimeters.HemWidth),
	}
}

// SegmentKind names a drawn measurement line.
type SegmentKind string

const (
	SegmentShoulder    SegmentKind = "shoulder"
	SegmentLeftSleeve  SegmentKind = "left_sleeve"
	SegmentRightSleeve SegmentKind = "right_sleeve"
	SegmentTorso       SegmentKind = "torso"
	SegmentHem         SegmentKind = "hem"
)

// Segment is a line drawn over the frame for one measurement.
type Segment struct {
	Kind     SegmentKind
	From, To Point
}

// Segments returns the overlay lines for the result.
func (r *Result) Segments() []Segment {
	p := r.Points
	return []Segment{
		{Kind: SegmentShoulder, From: p.LeftShoulder, To: p.RightShoulder},
		{Kind: SegmentLeftSleeve, From: p.LeftShoulder, To: p.LeftWrist},
		{Kind: SegmentRightSleeve, From: p.RightShoulder, To: p.RightWrist},
		{Kind: SegmentTorso, From: midpoint(p.LeftShoulder, p.RightShoulder), To: midpoint(p.LeftHip, p.RightHip)},
		{Kind: SegmentHem, From: p.LeftHip, To: p.RightHip},
	}
}

// Calculator computes measurements from one landmark snapshot.
// It holds no state besides its calibration and is safe for concurrent use.
type Calculator struct {
	calibration float64
}

// NewCalculator creates a Calculator. A non-positive or non-finite
// calibration falls back to DefaultCalibration.
func NewCalculator(calibration float64) *Calculator {
	if !(calibration > 0) || math.IsInf(calibration, 0) {
		calibration = DefaultCalibration
	}
	return &Calculator{calibration: calibration}
}

// Calibration returns the calibration constant in use.
func (c *Calculator) Calibration() float64 {
	return c.calibration
}

// Compute measures the landmarks using referenceHeightCm as the scale anchor.
func (c *Calculator) Compute(landmarks detector.Landmarks, size FrameSize, referenceHeightCm float64) (*Result, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("%w: frame %dx%d", ErrDegenerateScale, size.Width, size.Height)
	}

	if missing := landmarks.Missing(Required...); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, idx := range missing {
			names[i] = idx.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingLandmark, strings.Join(names, ", "))
	}

	px := func(idx detector.Index) Point { return ToPixel(landmarks[idx], size) }

	nose := px(detector.Nose)
	points := Points{
		LeftShoulder:  px(detector.LeftShoulder),
		RightShoulder: px(detector.RightShoulder),
		LeftWrist:     px(detector.LeftWrist),
		RightWrist:    px(detector.RightWrist),
		LeftHip:       px(detector.LeftHip),
		RightHip:      px(detector.RightHip),
	}

	pixels := Lengths{
		ShoulderWidth: distance(points.LeftShoulder, points.RightShoulder),
		SleeveLength: (distance(points.LeftShoulder, points.LeftWrist) +
			distance(points.RightShoulder, points.RightWrist)) / 2,
		TotalLength: math.Abs((points.LeftShoulder.Y+points.RightShoulder.Y)/2 -
			(points.LeftHip.Y+points.RightHip.Y)/2),
		HemWidth: distance(points.LeftHip, points.RightHip),
	}

	span := distance(nose, midpoint(points.LeftHip, points.RightHip))
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return nil, fmt.Errorf("%w: nose to hip distance is %v px", ErrDegenerateScale, span)
	}

	scale := referenceHeightCm / span / c.calibration
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: reference height %v cm", ErrDegenerateScale, referenceHeightCm)
	}

	cm := pixels.scaled(scale)
	if !finite(cm) {
		return nil, fmt.Errorf("%w: non-finite measurement", ErrDegenerateScale)
	}

	return &Result{
		Centimeters: cm,
		Pixels:      pixels,
		Points:      points,
		Scale:       scale,
		Frame:       size,
	}, nil
}

func finite(l Lengths) bool {
	for _, v := range []float64{l.ShoulderWidth, l.SleeveLength, l.TotalLength, l.HemWidth} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
