package api

import (
	"net/http"

	service "github.com/okian/burstcov/internal/app"
)

// EvaluateHandler handles evaluation requests.
type EvaluateHandler struct {
	deps Dependencies
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps Dependencies) *EvaluateHandler {
	return &EvaluateHandler{deps: deps}
}

// evaluateRequest is the body of POST /evaluate. Both fields are optional;
// without product_ids the stored bursts are evaluated.
type evaluateRequest struct {
	ProductIDs            []string `json:"product_ids"`
	TargetCoveragePercent *int     `json:"target_coverage_percent"`
}

// HandlePostEvaluate handles POST /evaluate requests.
func (h *EvaluateHandler) HandlePostEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req evaluateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	res, err := h.deps.Evaluate(r.Context(), service.Request{
		ProductIDs:            req.ProductIDs,
		TargetCoveragePercent: req.TargetCoveragePercent,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
