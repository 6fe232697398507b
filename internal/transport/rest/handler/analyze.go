package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"reverselearn/internal/model"
	"reverselearn/internal/service"
)

// AnalyzeHandler handles the AI audience endpoint
type AnalyzeHandler struct {
	analyzeSvc *service.AnalyzeService
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyzeSvc *service.AnalyzeService) *AnalyzeHandler {
	return &AnalyzeHandler{analyzeSvc: analyzeSvc}
}

// Analyze handles POST /v1/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req model.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.analyzeSvc.Analyze(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownMode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
