package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/tailorcam/internal/detector"
	"github.com/ayusman/tailorcam/internal/measure"
	"github.com/ayusman/tailorcam/internal/overlay"
	"github.com/ayusman/tailorcam/internal/session"
)

// runPipeline processes one camera frame per tick until stopCh closes.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	fps := a.Camera().FPS()
	if fps <= 0 {
		fps = 15
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			a.step(now)
		}
	}
}

// step reads, detects, advances the session and publishes one annotated frame.
// The session is advanced even when no frame could be processed so a capture
// in progress still completes.
func (a *App) step(now time.Time) {
	started := time.Now()

	frame, err := a.Camera().ReadFrame()
	if err != nil {
		a.metrics.ReadErrors.Add(1)
		log.Printf("Error reading frame: %v", err)
		a.session.Advance(now)
		return
	}
	defer frame.Close()
	a.metrics.FramesRead.Add(1)

	var landmarks detector.Landmarks
	if a.skipDetection(frame) {
		a.metrics.FramesSkipped.Add(1)
	} else {
		landmarks, err = a.Detector().Detect(frame)
		if err != nil {
			a.metrics.DetectErrors.Add(1)
			log.Printf("Error detecting pose: %v", err)
			a.session.Advance(now)
			return
		}
		a.metrics.FramesProcessed.Add(1)
		if landmarks != nil {
			a.metrics.PosesDetected.Add(1)
		}
		a.vacant = landmarks == nil
	}

	size := measure.FrameSize{Width: frame.Cols(), Height: frame.Rows()}
	snap := a.session.Observe(now, landmarks, size)

	overlay.Render(frame, sceneFor(a.session, snap, landmarks))

	data, err := overlay.EncodeJPEG(frame)
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return
	}
	a.publish(data)
	a.metrics.UpdateProcessLatency(time.Since(started))
}

// skipDetection reports whether the frame can be treated as empty without
// running the detector: nobody was in view, no cycle is running and the scene
// has not changed.
func (a *App) skipDetection(frame *gocv.Mat) bool {
	if a.motion == nil {
		return false
	}
	moved := a.motion.Moved(frame)
	return !moved && a.vacant && a.session.Snapshot().Phase == session.PhaseIdle
}

func sceneFor(sess *session.Session, snap session.Snapshot, landmarks detector.Landmarks) overlay.Scene {
	scene := overlay.Scene{
		Guide:     sess.Guide(),
		Landmarks: landmarks,
		Message:   snap.Message,
		Error:     snap.Error,
	}
	if scene.Message == "" {
		scene.Message = snap.Feedback
	}
	if snap.Measurement != nil {
		scene.Result = snap.Measurement.Result
	}
	return scene
}
