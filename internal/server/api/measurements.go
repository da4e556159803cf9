package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/tailorcam/internal/detector"
	"github.com/ayusman/tailorcam/internal/measure"
	"github.com/ayusman/tailorcam/internal/session"
)

// MeasurementHandler serves the latest measurement.
type MeasurementHandler struct {
	session *session.Session
}

// NewMeasurementHandler creates a MeasurementHandler.
func NewMeasurementHandler(sess *session.Session) *MeasurementHandler {
	return &MeasurementHandler{session: sess}
}

// ServeHTTP handles GET /api/measurement.
func (h *MeasurementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m := h.session.Latest()
	if m == nil {
		writeError(w, http.StatusNotFound, "No measurement taken yet")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// MeasureHandler runs the calculator on landmarks supplied by the client.
// It does not touch the session state.
type MeasureHandler struct {
	session *session.Session
}

// NewMeasureHandler creates a MeasureHandler using the session's calculator
// and, by default, its reference height.
func NewMeasureHandler(sess *session.Session) *MeasureHandler {
	return &MeasureHandler{session: sess}
}

type measureRequest struct {
	// Landmarks is indexed by landmark number; null entries are missing.
	Landmarks         []*detector.Landmark `json:"landmarks"`
	Frame             measure.FrameSize    `json:"frame"`
	ReferenceHeightCm *float64             `json:"reference_height_cm,omitempty"`
}

type measureResponse struct {
	ReferenceHeightCm float64         `json:"reference_height_cm"`
	Result            *measure.Result `json:"result"`
	Display           measure.Display `json:"display"`
}

// ServeHTTP handles POST /api/measure.
func (h *MeasureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req measureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	height := h.session.ReferenceHeight()
	if req.ReferenceHeightCm != nil {
		height = *req.ReferenceHeightCm
		if err := session.ValidateHeight(height); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	landmarks := make(detector.Landmarks, len(req.Landmarks))
	for i, lm := range req.Landmarks {
		if lm != nil {
			landmarks[detector.Index(i)] = *lm
		}
	}

	res, err := h.session.Calculator().Compute(landmarks, req.Frame, height)
	if err != nil {
		if measure.IsUnmeasurable(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to compute measurement")
		return
	}

	writeJSON(w, http.StatusOK, measureResponse{
		ReferenceHeightCm: height,
		Result:            res,
		Display:           res.Display(),
	})
}

// StateHandler serves the session snapshot.
type StateHandler struct {
	session *session.Session
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(sess *session.Session) *StateHandler {
	return &StateHandler{session: sess}
}

// ServeHTTP handles GET /api/state.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}
