package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/tailorcam/internal/metrics"
)

const streamInterval = 66 * time.Millisecond // ~15 FPS

// StreamHandler serves the annotated frames as MJPEG.
type StreamHandler struct {
	frames  FrameSource
	metrics *metrics.Metrics
}

// NewStreamHandler creates a new StreamHandler reading from frames.
func NewStreamHandler(frames FrameSource, m *metrics.Metrics) *StreamHandler {
	return &StreamHandler{frames: frames, metrics: m}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if h.metrics != nil {
		h.metrics.StreamClients.Add(1)
		defer h.metrics.StreamClients.Add(-1)
	}

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var sent uint64
	for {
		if data, seq, ok := h.frames.LatestJPEG(); ok && seq != sent {
			if err := writePart(w, data); err != nil {
				return
			}
			sent = seq
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}
