package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/internal/domain/types"
)

// MappingsHandler lists and registers mappings.
type MappingsHandler struct {
	deps MappingRegistry
}

// NewMappingsHandler creates a new mappings handler.
func NewMappingsHandler(deps MappingRegistry) *MappingsHandler {
	return &MappingsHandler{deps: deps}
}

// mappingRequest mirrors the OpenAPI schema for POST /mappings.
type mappingRequest struct {
	Gesture gesture.Definition `json:"gesture"`
	Effect  haptic.Definition  `json:"effect"`
}

// HandleMappings dispatches GET and POST /mappings.
func (h *MappingsHandler) HandleMappings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.register(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *MappingsHandler) list(w http.ResponseWriter, r *http.Request) {
	ms := h.deps.Mappings(r.Context())
	out := make([]types.MappingEntry, len(ms))
	for i, m := range ms {
		out[i] = types.NewMappingEntry(i, m)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MappingsHandler) register(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	g, err := req.Gesture.Spec()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_gesture", err)
		return
	}
	e, err := req.Effect.Effect()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_effect", err)
		return
	}
	index, err := h.deps.AddMapping(r.Context(), g, e)
	if err != nil {
		writeError(w, http.StatusBadRequest, "configuration", err)
		return
	}

	writeJSON(w, http.StatusCreated, types.MappingEntry{
		Index:   index,
		Gesture: gesture.DefinitionOf(g),
		Effect:  haptic.DefinitionOf(e),
	})
}
