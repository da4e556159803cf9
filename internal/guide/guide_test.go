package guide

import (
	"testing"

	"github.com/ayusman/tailorcam/internal/detector"
	"github.com/ayusman/tailorcam/internal/measure"
)

func shoulders(left, right float64) detector.Landmarks {
	return detector.Landmarks{
		detector.LeftShoulder:  {X: left, Y: 0.3},
		detector.RightShoulder: {X: right, Y: 0.3},
	}
}

func TestGuide_Check(t *testing.T) {
	g := Default()
	size := measure.FrameSize{Width: 1000, Height: 1000}

	tests := []struct {
		name      string
		landmarks detector.Landmarks
		want      Status
	}{
		{"centered", shoulders(0.6, 0.4), InPosition},
		{"standing preset", detector.StandingPose(), InPosition},
		{"off center preset", detector.OffCenterPose(), OutOfPosition},
		{"left shoulder past left line", shoulders(0.75, 0.4), OutOfPosition},
		{"right shoulder past right line", shoulders(0.6, 0.25), OutOfPosition},
		{"right shoulder just past right line", shoulders(0.6, 0.29), OutOfPosition},
		{"missing left shoulder", detector.Landmarks{detector.RightShoulder: {X: 0.4}}, NoBody},
		{"no landmarks", nil, NoBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Check(tt.landmarks, size); got != tt.want {
				t.Errorf("Check() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGuide_LeftShoulderOffset(t *testing.T) {
	size := measure.FrameSize{Width: 1000, Height: 1000}

	// Left shoulder lands at 300.05 px: inside the line without the
	// offset, outside once 0.1 px is subtracted.
	lm := shoulders(0.69995, 0.4)

	if got := Default().Check(lm, size); got != OutOfPosition {
		t.Errorf("with offset Check() = %s, want out_of_position", got)
	}

	noOffset := Default()
	noOffset.LeftShoulderOffset = 0
	if got := noOffset.Check(lm, size); got != InPosition {
		t.Errorf("without offset Check() = %s, want in_position", got)
	}
}

func TestGuide_Lines(t *testing.T) {
	left, right := Default().Lines(640)
	if left != 640*0.3 || right != 640*0.7 {
		t.Errorf("Lines(640) = (%f, %f), want (192, 448)", left, right)
	}
}

func TestStatus_String(t *testing.T) {
	if NoBody.String() != "no_body" || OutOfPosition.String() != "out_of_position" || InPosition.String() != "in_position" {
		t.Error("unexpected status names")
	}
}
