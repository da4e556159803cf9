package testdata

import (
	"testing"

	"github.com/ayusman/tailorcam/internal/detector"
	"github.com/ayusman/tailorcam/internal/guide"
	"github.com/ayusman/tailorcam/internal/measure"
)

func TestLoadPose(t *testing.T) {
	tests := []struct {
		name       string
		wantCount  int
		wantStatus guide.Status
	}{
		{"standing", detector.NumLandmarks, guide.InPosition},
		{"off_center", detector.NumLandmarks, guide.OutOfPosition},
		{"missing_wrist", detector.NumLandmarks - 4, guide.InPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pose, err := LoadPose(tt.name)
			if err != nil {
				t.Fatalf("LoadPose() error = %v", err)
			}
			if pose.Frame != (measure.FrameSize{Width: 1280, Height: 720}) {
				t.Errorf("frame = %+v, want 1280x720", pose.Frame)
			}
			if len(pose.Landmarks) != tt.wantCount {
				t.Errorf("landmarks = %d, want %d", len(pose.Landmarks), tt.wantCount)
			}
			if got := guide.Default().Check(pose.Landmarks, pose.Frame); got != tt.wantStatus {
				t.Errorf("guide status = %s, want %s", got, tt.wantStatus)
			}
		})
	}
}

func TestLoadPose_Missing(t *testing.T) {
	if _, err := LoadPose("nope"); err == nil {
		t.Error("expected error for unknown fixture")
	}
}

func TestNames(t *testing.T) {
	names, err := Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if len(names) != 3 {
		t.Errorf("Names() = %v, want 3 fixtures", names)
	}
}
