package api

import (
	"net/http"
	"strconv"

	"github.com/okian/tactile/internal/domain/types"
)

const (
	defaultFiringsLimit = 20
	maxFiringsLimit     = 256
)

// FiringsHandler lists recent dispatches.
type FiringsHandler struct {
	deps FiringSource
}

// NewFiringsHandler creates a new firings handler.
func NewFiringsHandler(deps FiringSource) *FiringsHandler {
	return &FiringsHandler{deps: deps}
}

// HandleGetFirings handles GET /firings?limit=N, newest first.
func (h *FiringsHandler) HandleGetFirings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := defaultFiringsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxFiringsLimit {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		limit = n
	}

	fs := h.deps.RecentFirings(r.Context(), limit)
	out := make([]types.FiringEntry, len(fs))
	for i, f := range fs {
		out[i] = types.NewFiringEntry(f)
	}
	writeJSON(w, http.StatusOK, out)
}
