// Package detector provides pose detection interfaces and types for body measurement.
package detector

import (
	"fmt"
	"sort"
)

// Index identifies a body landmark in the MediaPipe Pose numbering.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
type Index int

// Pose landmark indices following MediaPipe convention.
const (
	Nose Index = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
	NumLandmarks = 33
)

var indexNames = [NumLandmarks]string{
	"nose", "left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear", "mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
	"left_wrist", "right_wrist", "left_pinky", "right_pinky",
	"left_index", "right_index", "left_thumb", "right_thumb",
	"left_hip", "right_hip", "left_knee", "right_knee",
	"left_ankle", "right_ankle", "left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

// String returns the snake_case name of the landmark.
func (i Index) String() string {
	if i < 0 || int(i) >= NumLandmarks {
		return fmt.Sprintf("landmark(%d)", int(i))
	}
	return indexNames[i]
}

// Landmark is a detected keypoint. X and Y are normalized to the frame
// width and height; Z is relative depth.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Landmarks maps anatomical indices to detected points.
// A missing key means the landmark was not detected.
type Landmarks map[Index]Landmark

// Missing returns the requested indices that are absent, in ascending order.
func (l Landmarks) Missing(required ...Index) []Index {
	var missing []Index
	for _, idx := range required {
		if _, ok := l[idx]; !ok {
			missing = append(missing, idx)
		}
	}
	sort.Slice(missing, func(a, b int) bool { return missing[a] < missing[b] })
	return missing
}

// Clone returns a copy that does not share storage with l.
func (l Landmarks) Clone() Landmarks {
	if l == nil {
		return nil
	}
	out := make(Landmarks, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// FromSlice builds Landmarks from a model output ordered by index.
// Entries beyond NumLandmarks are ignored.
func FromSlice(points []Landmark) Landmarks {
	if points == nil {
		return nil
	}
	out := make(Landmarks, len(points))
	for i, p := range points {
		if i >= NumLandmarks {
			break
		}
		out[Index(i)] = p
	}
	return out
}

// Connections lists the skeleton edges drawn between landmarks.
var Connections = [][2]Index{
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist},
	{RightShoulder, RightElbow}, {RightElbow, RightWrist},
	{LeftWrist, LeftPinky}, {LeftWrist, LeftIndex}, {LeftWrist, LeftThumb}, {LeftPinky, LeftIndex},
	{RightWrist, RightPinky}, {RightWrist, RightIndex}, {RightWrist, RightThumb}, {RightPinky, RightIndex},
	{LeftShoulder, LeftHip}, {RightShoulder, RightHip}, {LeftHip, RightHip},
	{LeftHip, LeftKnee}, {LeftKnee, LeftAnkle}, {LeftAnkle, LeftHeel}, {LeftHeel, LeftFootIndex}, {LeftAnkle, LeftFootIndex},
	{RightHip, RightKnee}, {RightKnee, RightAnkle}, {RightAnkle, RightHeel}, {RightHeel, RightFootIndex}, {RightAnkle, RightFootIndex},
	{Nose, LeftEyeInner}, {LeftEyeInner, LeftEye}, {LeftEye, LeftEyeOuter}, {LeftEyeOuter, LeftEar},
	{Nose, RightEyeInner}, {RightEyeInner, RightEye}, {RightEye, RightEyeOuter}, {RightEyeOuter, RightEar},
	{MouthLeft, MouthRight},
}
