package api

import (
	"errors"
	"net/http"
)

// BurstsHandler handles burst ingest requests.
type BurstsHandler struct {
	deps Dependencies
}

// NewBurstsHandler creates a new bursts handler.
func NewBurstsHandler(deps Dependencies) *BurstsHandler {
	return &BurstsHandler{deps: deps}
}

type burstsRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// HandlePostBursts handles POST /bursts requests.
func (h *BurstsHandler) HandlePostBursts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req burstsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if len(req.ProductIDs) == 0 {
		writeServiceError(w, errors.Join(ErrBadRequest, errors.New("missing product_ids")))
		return
	}

	res, err := h.deps.Ingest(r.Context(), req.ProductIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res.Rejected == nil {
		res.Rejected = []string{}
	}
	writeJSON(w, http.StatusAccepted, res)
}
