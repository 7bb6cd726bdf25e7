package api

import (
	"net/http"
)

// EngineHandler starts and stops recognition.
type EngineHandler struct {
	deps EngineController
}

// NewEngineHandler creates a new engine handler.
func NewEngineHandler(deps EngineController) *EngineHandler {
	return &EngineHandler{deps: deps}
}

type engineResponse struct {
	State string `json:"state"`
}

// HandleGetEngine handles GET /engine.
func (h *EngineHandler) HandleGetEngine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, engineResponse{State: h.deps.EngineStatus(r.Context())})
}

// HandleStart handles POST /engine/start. A renderer that cannot prepare
// yields 503 and the engine stays stopped.
func (h *EngineHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.StartEngine(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "engine_unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, engineResponse{State: h.deps.EngineStatus(r.Context())})
}

// HandleStop handles POST /engine/stop.
func (h *EngineHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.deps.StopEngine(r.Context())
	writeJSON(w, http.StatusOK, engineResponse{State: h.deps.EngineStatus(r.Context())})
}
