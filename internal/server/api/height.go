package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ayusman/tailorcam/internal/metrics"
	"github.com/ayusman/tailorcam/internal/session"
	"github.com/ayusman/tailorcam/internal/store"
)

// HeightHandler reads and updates the reference height.
type HeightHandler struct {
	session *session.Session
	store   *store.Store
	metrics *metrics.Metrics
}

// NewHeightHandler creates a HeightHandler. The store and metrics may be nil.
func NewHeightHandler(sess *session.Session, s *store.Store, m *metrics.Metrics) *HeightHandler {
	return &HeightHandler{session: sess, store: s, metrics: m}
}

type heightRequest struct {
	ReferenceHeightCm *float64 `json:"reference_height_cm"`
}

type heightResponse struct {
	ReferenceHeightCm float64 `json:"reference_height_cm"`
}

// ServeHTTP handles GET and PUT /api/height.
func (h *HeightHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, heightResponse{ReferenceHeightCm: h.session.ReferenceHeight()})
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HeightHandler) update(w http.ResponseWriter, r *http.Request) {
	var req heightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.ReferenceHeightCm == nil {
		writeError(w, http.StatusBadRequest, "reference_height_cm is required")
		return
	}

	cm := *req.ReferenceHeightCm
	if err := h.session.SetReferenceHeight(cm); err != nil {
		if errors.Is(err, session.ErrInvalidHeight) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update reference height")
		return
	}

	if h.store != nil {
		if err := h.store.Settings().SetFloat(store.KeyReferenceHeight, cm); err != nil {
			log.Printf("Error saving reference height: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to save reference height")
			return
		}
	}
	if h.metrics != nil {
		h.metrics.SetReferenceHeight(cm)
	}

	writeJSON(w, http.StatusOK, heightResponse{ReferenceHeightCm: cm})
}
