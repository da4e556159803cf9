// Package overlay draws the guide box, skeleton and measurement lines onto camera frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/tailorcam/internal/detector"
	"github.com/ayusman/tailorcam/internal/guide"
	"github.com/ayusman/tailorcam/internal/measure"
)

var (
	guideColor    = color.RGBA{R: 255, G: 255, A: 255}
	boxColor      = color.RGBA{B: 255, A: 128}
	skeletonColor = color.RGBA{G: 255, A: 255}
	jointColor    = color.RGBA{R: 255, A: 255}
	textColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	segmentColors = map[measure.SegmentKind]color.RGBA{
		measure.SegmentShoulder:    {R: 255, A: 255},
		measure.SegmentLeftSleeve:  {G: 128, A: 255},
		measure.SegmentRightSleeve: {G: 128, A: 255},
		measure.SegmentTorso:       {B: 255, A: 255},
		measure.SegmentHem:         {R: 255, G: 165, A: 255},
	}
)

const (
	guideThickness    = 3
	skeletonThickness = 4
	segmentThickness  = 2
	jointRadius       = 4
)

// Scene is everything drawn over one frame.
type Scene struct {
	Guide     guide.Guide
	Landmarks detector.Landmarks
	// Result is the last measurement, redrawn until the next one replaces it.
	Result  *measure.Result
	Message string
	Error   string
}

// Render mirrors the frame horizontally and draws the scene onto it.
func Render(frame *gocv.Mat, scene Scene) {
	if frame == nil || frame.Empty() {
		return
	}

	gocv.Flip(*frame, frame, 1)

	size := measure.FrameSize{Width: frame.Cols(), Height: frame.Rows()}

	drawGuide(frame, scene.Guide, size)
	drawSkeleton(frame, scene.Landmarks, size)
	if scene.Result != nil {
		drawMeasurements(frame, scene.Result, size)
	}
	drawText(frame, scene, size)
}

func drawGuide(img *gocv.Mat, g guide.Guide, size measure.FrameSize) {
	left, right := g.Lines(size.Width)
	x1, x2 := int(left), int(right)

	gocv.Rectangle(img, image.Rect(x1, 0, x2, size.Height-1), boxColor, 1)
	gocv.Line(img, image.Pt(x1, 0), image.Pt(x1, size.Height), guideColor, guideThickness)
	gocv.Line(img, image.Pt(x2, 0), image.Pt(x2, size.Height), guideColor, guideThickness)
}

func drawSkeleton(img *gocv.Mat, landmarks detector.Landmarks, size measure.FrameSize) {
	if landmarks == nil {
		return
	}

	for _, c := range detector.Connections {
		a, okA := landmarks[c[0]]
		b, okB := landmarks[c[1]]
		if !okA || !okB {
			continue
		}
		gocv.Line(img, toImage(measure.ToPixel(a, size)), toImage(measure.ToPixel(b, size)),
			skeletonColor, skeletonThickness)
	}

	for _, lm := range landmarks {
		gocv.Circle(img, toImage(measure.ToPixel(lm, size)), jointRadius, jointColor, -1)
	}
}

func drawMeasurements(img *gocv.Mat, r *measure.Result, size measure.FrameSize) {
	for _, seg := range r.Segments() {
		from := rescale(seg.From, r.Frame, size)
		to := rescale(seg.To, r.Frame, size)
		gocv.Line(img, toImage(from), toImage(to), segmentColors[seg.Kind], segmentThickness)
	}
}

func drawText(img *gocv.Mat, scene Scene, size measure.FrameSize) {
	y := size.Height - 16
	for _, line := range []string{scene.Error, scene.Message} {
		if line == "" {
			continue
		}
		gocv.PutText(img, line, image.Pt(12, y), gocv.FontHersheySimplex, 0.6, textColor, 2)
		y -= 24
	}

	if scene.Result != nil {
		d := scene.Result.Display()
		summary := fmt.Sprintf("shoulder %s  sleeve %s  length %s  hem %s",
			d.ShoulderWidth, d.SleeveLength, d.TotalLength, d.HemWidth)
		gocv.PutText(img, summary, image.Pt(12, 24), gocv.FontHersheySimplex, 0.5, textColor, 1)
	}
}

// rescale maps a point measured on one frame size onto another.
func rescale(p measure.Point, from, to measure.FrameSize) measure.Point {
	if from.Width <= 0 || from.Height <= 0 || from == to {
		return p
	}
	return measure.Point{
		X: p.X * float64(to.Width) / float64(from.Width),
		Y: p.Y * float64(to.Height) / float64(from.Height),
	}
}

func toImage(p measure.Point) image.Point {
	return image.Pt(int(p.X+0.5), int(p.Y+0.5))
}

// EncodeJPEG encodes the frame for streaming.
func EncodeJPEG(frame *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}
