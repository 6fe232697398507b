package handler

import (
	"io"
	"net/http"

	"reverselearn/internal/model"
	"reverselearn/internal/service"
)

// maxRecordingBytes caps uploaded recordings at 32 MB
const maxRecordingBytes = 32 << 20

// TranscribeHandler handles audio uploads
type TranscribeHandler struct {
	transcribeSvc *service.TranscriptionService
}

// NewTranscribeHandler creates a new transcribe handler
func NewTranscribeHandler(transcribeSvc *service.TranscriptionService) *TranscribeHandler {
	return &TranscribeHandler{transcribeSvc: transcribeSvc}
}

// Transcribe handles POST /v1/transcribe (multipart, field "audio")
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRecordingBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with an audio file")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing audio file")
		return
	}
	defer file.Close()

	recording, err := io.ReadAll(io.LimitReader(file, maxRecordingBytes))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read audio file")
		return
	}

	transcript, err := h.transcribeSvc.Transcribe(r.Context(), recording)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, model.TranscribeResponse{Transcript: transcript})
}
