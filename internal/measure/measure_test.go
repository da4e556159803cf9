package measure

import (
	"errors"
	"math"
	"testing"

	"github.com/ayusman/tailorcam/internal/detector"
)

const epsilon = 1e-9

var square = FrameSize{Width: 1000, Height: 1000}

func TestToPixel_Mirrored(t *testing.T) {
	p := ToPixel(detector.Landmark{X: 0.3, Y: 0.25}, square)

	if math.Abs(p.X-700) > epsilon {
		t.Errorf("X = %f, want 700", p.X)
	}
	if math.Abs(p.Y-250) > epsilon {
		t.Errorf("Y = %f, want 250 (no vertical mirroring)", p.Y)
	}
}

func TestCompute_Example(t *testing.T) {
	calc := NewCalculator(DefaultCalibration)

	res, err := calc.Compute(detector.StandingPose(), square, 170)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	wantScale := 170.0 / 400.0 / 1.9
	if math.Abs(res.Scale-wantScale) > epsilon {
		t.Errorf("Scale = %f, want %f", res.Scale, wantScale)
	}
	if math.Abs(res.Pixels.ShoulderWidth-200) > epsilon {
		t.Errorf("shoulder px = %f, want 200", res.Pixels.ShoulderWidth)
	}
	if got := res.Display().ShoulderWidth; got != "44.74 cm" {
		t.Errorf("shoulder width = %q, want 44.74 cm", got)
	}

	// Torso: shoulders at y=300, hips at y=600.
	if math.Abs(res.Pixels.TotalLength-300) > epsilon {
		t.Errorf("total px = %f, want 300", res.Pixels.TotalLength)
	}
	// Hem: hips at x=440 and x=560.
	if math.Abs(res.Pixels.HemWidth-120) > epsilon {
		t.Errorf("hem px = %f, want 120", res.Pixels.HemWidth)
	}
	// Sleeve: (0.06, 0.30) normalized offset on both sides.
	wantSleeve := math.Hypot(60, 300)
	if math.Abs(res.Pixels.SleeveLength-wantSleeve) > epsilon {
		t.Errorf("sleeve px = %f, want %f", res.Pixels.SleeveLength, wantSleeve)
	}

	if res.Points.LeftShoulder.X >= res.Points.RightShoulder.X {
		t.Error("mirrored left shoulder should appear left of the right shoulder")
	}
	if res.Frame != square {
		t.Errorf("Frame = %+v, want %+v", res.Frame, square)
	}
}

func TestCompute_NonNegativeFinite(t *testing.T) {
	calc := NewCalculator(DefaultCalibration)

	poses := map[string]detector.Landmarks{
		"standing":   detector.StandingPose(),
		"off center": detector.OffCenterPose(),
		"tilted": func() detector.Landmarks {
			p := detector.StandingPose()
			p[detector.LeftShoulder] = detector.Landmark{X: 0.62, Y: 0.27}
			p[detector.RightHip] = detector.Landmark{X: 0.43, Y: 0.64}
			return p
		}(),
		"hips above shoulders": func() detector.Landmarks {
			p := detector.StandingPose()
			p[detector.LeftHip] = detector.Landmark{X: 0.56, Y: 0.1}
			p[detector.RightHip] = detector.Landmark{X: 0.44, Y: 0.1}
			return p
		}(),
	}

	sizes := []FrameSize{{640, 480}, {1280, 720}, {1000, 1000}}

	for name, pose := range poses {
		for _, size := range sizes {
			res, err := calc.Compute(pose, size, 165)
			if err != nil {
				t.Errorf("%s %dx%d: Compute() error = %v", name, size.Width, size.Height, err)
				continue
			}
			for _, v := range []float64{
				res.Centimeters.ShoulderWidth, res.Centimeters.SleeveLength,
				res.Centimeters.TotalLength, res.Centimeters.HemWidth,
			} {
				if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
					t.Errorf("%s %dx%d: got invalid value %f", name, size.Width, size.Height, v)
				}
			}
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	calc := NewCalculator(DefaultCalibration)
	pose := detector.StandingPose()

	first, err := calc.Compute(pose, square, 172.5)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := calc.Compute(pose, square, 172.5)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		if *again != *first {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestCompute_MissingLandmark(t *testing.T) {
	calc := NewCalculator(DefaultCalibration)

	for _, idx := range Required {
		t.Run(idx.String(), func(t *testing.T) {
			pose := detector.StandingPose()
			delete(pose, idx)

			res, err := calc.Compute(pose, square, 170)
			if res != nil {
				t.Errorf("expected no result, got %+v", res)
			}
			if !errors.Is(err, ErrMissingLandmark) {
				t.Fatalf("error = %v, want ErrMissingLandmark", err)
			}
			if !IsUnmeasurable(err) {
				t.Error("IsUnmeasurable() = false, want true")
			}
		})
	}

	t.Run("unrelated landmark is not required", func(t *testing.T) {
		pose := detector.StandingPose()
		delete(pose, detector.LeftKnee)
		delete(pose, detector.LeftEye)

		if _, err := calc.Compute(pose, square, 170); err != nil {
			t.Errorf("Compute() error = %v", err)
		}
	})

	t.Run("nil landmarks", func(t *testing.T) {
		if _, err := calc.Compute(nil, square, 170); !errors.Is(err, ErrMissingLandmark) {
			t.Errorf("error = %v, want ErrMissingLandmark", err)
		}
	})
}

func TestCompute_DegenerateScale(t *testing.T) {
	calc := NewCalculator(DefaultCalibration)

	tests := []struct {
		name   string
		pose   func() detector.Landmarks
		size   FrameSize
		height float64
	}{
		{
			name: "nose on hip midpoint",
			pose: func() detector.Landmarks {
				p := detector.StandingPose()
				p[detector.Nose] = detector.Landmark{X: 0.5, Y: 0.6}
				return p
			},
			size:   square,
			height: 170,
		},
		{
			name: "nan coordinate",
			pose: func() detector.Landmarks {
				p := detector.StandingPose()
				p[detector.Nose] = detector.Landmark{X: math.NaN(), Y: 0.2}
				return p
			},
			size:   square,
			height: 170,
		},
		{
			name:   "empty frame",
			pose:   detector.StandingPose,
			size:   FrameSize{},
			height: 170,
		},
		{
			name:   "zero width",
			pose:   detector.StandingPose,
			size:   FrameSize{Width: 0, Height: 1000},
			height: 170,
		},
		{
			name:   "zero height",
			pose:   detector.StandingPose,
			size:   FrameSize{Width: 1000, Height: 0},
			height: 170,
		},
		{
			name:   "negative width",
			pose:   detector.StandingPose,
			size:   FrameSize{Width: -1000, Height: 1000},
			height: 170,
		},
		{
			name:   "zero reference height",
			pose:   detector.StandingPose,
			size:   square,
			height: 0,
		},
		{
			name:   "nan reference height",
			pose:   detector.StandingPose,
			size:   square,
			height: math.NaN(),
		},
		{
			name: "nan wrist",
			pose: func() detector.Landmarks {
				p := detector.StandingPose()
				p[detector.LeftWrist] = detector.Landmark{X: math.NaN(), Y: math.NaN()}
				return p
			},
			size:   square,
			height: 170,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := calc.Compute(tt.pose(), tt.size, tt.height)
			if res != nil {
				t.Errorf("expected no result, got %+v", res)
			}
			if !errors.Is(err, ErrDegenerateScale) {
				t.Errorf("error = %v, want ErrDegenerateScale", err)
			}
		})
	}
}

func TestCompute_ScaleLinearity(t *testing.T) {
	calc := NewCalculator(DefaultCalibration)
	pose := detector.StandingPose()

	base, err := calc.Compute(pose, FrameSize{Width: 640, Height: 480}, 163)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	doubled, err := calc.Compute(pose, FrameSize{Width: 640, Height: 480}, 326)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if doubled.Centimeters != base.Centimeters.scaled(2) {
		t.Errorf("doubled = %+v, want %+v", doubled.Centimeters, base.Centimeters.scaled(2))
	}
	if doubled.Pixels != base.Pixels {
		t.Error("pixel lengths should not depend on reference height")
	}
}

func TestNewCalculator_Calibration(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.9, 1.9},
		{2.1, 2.1},
		{0, DefaultCalibration},
		{-1, DefaultCalibration},
		{math.NaN(), DefaultCalibration},
		{math.Inf(1), DefaultCalibration},
	}

	for _, tt := range tests {
		if got := NewCalculator(tt.in).Calibration(); got != tt.want {
			t.Errorf("NewCalculator(%v).Calibration() = %v, want %v", tt.in, got, tt.want)
		}
	}

	t.Run("calibration divides the scale", func(t *testing.T) {
		a, _ := NewCalculator(1.9).Compute(detector.StandingPose(), square, 170)
		b, _ := NewCalculator(0.95).Compute(detector.StandingPose(), square, 170)
		if math.Abs(b.Scale-2*a.Scale) > epsilon {
			t.Errorf("scale with half calibration = %f, want %f", b.Scale, 2*a.Scale)
		}
	})
}

func TestResult_Segments(t *testing.T) {
	res, err := NewCalculator(DefaultCalibration).Compute(detector.StandingPose(), square, 170)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	segs := res.Segments()
	if len(segs) != 5 {
		t.Fatalf("len(segments) = %d, want 5", len(segs))
	}

	torso := segs[3]
	if torso.Kind != SegmentTorso {
		t.Fatalf("segment 3 kind = %s, want torso", torso.Kind)
	}
	if math.Abs(torso.From.X-500) > epsilon || math.Abs(torso.From.Y-300) > epsilon {
		t.Errorf("torso from = %+v, want (500, 300)", torso.From)
	}
	if math.Abs(torso.To.X-500) > epsilon || math.Abs(torso.To.Y-600) > epsilon {
		t.Errorf("torso to = %+v, want (500, 600)", torso.To)
	}
}

func TestResult_Display(t *testing.T) {
	r := &Result{Centimeters: Lengths{ShoulderWidth: 44.736, SleeveLength: 60.004, TotalLength: 0, HemWidth: 26.8449}}
	d := r.Display()

	if d.ShoulderWidth != "44.74 cm" || d.SleeveLength != "60.00 cm" || d.TotalLength != "0.00 cm" || d.HemWidth != "26.84 cm" {
		t.Errorf("Display() = %+v", d)
	}
}
