package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestMotionDetector_FirstFrameIsBaseline(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if got := md.Change(&frame); got != 0 {
		t.Errorf("first Change() = %f, want 0", got)
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	md.Moved(&frame1)
	if md.Moved(&frame2) {
		t.Error("identical frames should not count as motion")
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()

	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()
	gocv.Rectangle(&frame2, image.Rect(160, 120, 480, 360), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	md.Moved(&frame1)
	change := md.Change(&frame2)
	if change <= 1.0 {
		t.Errorf("Change() = %f, want > 1%% for a large white block", change)
	}
}

func TestMotionDetector_ResetAndSizeChange(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	small := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer small.Close()
	square := gocv.NewMatWithSize(480, 480, gocv.MatTypeCV8UC3)
	defer square.Close()
	gocv.Rectangle(&square, image.Rect(0, 0, 480, 480), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	md.Change(&small)
	if got := md.Change(&square); got != 0 {
		t.Errorf("Change() after size change = %f, want 0 (new baseline)", got)
	}

	md.Reset()
	if got := md.Change(&small); got != 0 {
		t.Errorf("Change() after Reset = %f, want 0", got)
	}
}

func TestMotionDetector_EmptyFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if md.Moved(nil) {
		t.Error("nil frame should not count as motion")
	}
	empty := gocv.NewMat()
	defer empty.Close()
	if md.Moved(&empty) {
		t.Error("empty frame should not count as motion")
	}
}
