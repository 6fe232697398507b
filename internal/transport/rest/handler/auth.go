package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"reverselearn/internal/model"
	"reverselearn/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.authSvc.Signup(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		writeMessage(w, http.StatusCreated, "Account created successfully")
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrMissingCredentials):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "could not create account")
	}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrMissingCredentials):
		writeMessage(w, http.StatusBadRequest, service.ErrInvalidCredentials.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "could not sign in")
	}
}
