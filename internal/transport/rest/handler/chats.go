package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"reverselearn/internal/model"
	"reverselearn/internal/service"
	"reverselearn/internal/transport/rest/middleware"
)

// ChatsHandler handles saved chat endpoints
type ChatsHandler struct {
	chatSvc *service.ChatService
}

// NewChatsHandler creates a new chats handler
func NewChatsHandler(chatSvc *service.ChatService) *ChatsHandler {
	return &ChatsHandler{chatSvc: chatSvc}
}

// List handles GET /v1/chats
func (h *ChatsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	chats, err := h.chatSvc.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list chats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

// Save handles POST /v1/chats
func (h *ChatsHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		SessionID string          `json:"sessionId"`
		Messages  []model.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to save")
		return
	}

	id, err := h.chatSvc.Save(r.Context(), userID, req.SessionID, req.Messages)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not save chat")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Delete handles DELETE /v1/chats/{chatId}
func (h *ChatsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	chatID := mux.Vars(r)["chatId"]

	err := h.chatSvc.Delete(r.Context(), userID, chatID)
	if err != nil {
		if errors.Is(err, service.ErrChatNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "could not delete chat")
		return
	}

	writeMessage(w, http.StatusOK, "Chat deleted")
}
