// Package testdata provides recorded pose fixtures for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ayusman/tailorcam/internal/detector"
	"github.com/ayusman/tailorcam/internal/measure"
)

//go:embed poses/*.json
var posesFS embed.FS

// Pose is one recorded detection with the size of the frame it came from.
type Pose struct {
	Frame     measure.FrameSize
	Landmarks detector.Landmarks
}

type poseFile struct {
	Frame measure.FrameSize `json:"frame"`
	// Null entries are landmarks the model did not report.
	Landmarks []*detector.Landmark `json:"landmarks"`
}

// LoadPose loads a pose fixture by name, without the .json extension.
func LoadPose(name string) (*Pose, error) {
	data, err := posesFS.ReadFile("poses/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load pose %s: %w", name, err)
	}

	var f poseFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode pose %s: %w", name, err)
	}

	landmarks := make(detector.Landmarks, len(f.Landmarks))
	for i, lm := range f.Landmarks {
		if lm != nil && i < detector.NumLandmarks {
			landmarks[detector.Index(i)] = *lm
		}
	}
	return &Pose{Frame: f.Frame, Landmarks: landmarks}, nil
}

// Names lists the available pose fixtures.
func Names() ([]string, error) {
	entries, err := posesFS.ReadDir("poses")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		names = append(names, n[:len(n)-len(".json")])
	}
	return names, nil
}
