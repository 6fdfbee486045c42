package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"go-wishlist-app/internal/core/domain/auth"
	"go-wishlist-app/internal/core/ports"
)

type AuthHandler struct {
	service ports.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(service ports.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// SignUp handles POST /signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.service.SignUp(r.Context(), req.Email, req.Password); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "sign up failed", "error", err)
		}
		respondError(w, h.logger, status, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, h.logger, http.StatusUnauthorized, err)
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		respondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, tokenResponse{Token: token})
}

// Logout handles POST /logout. The session comes from the auth middleware.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	sessionID, sok := auth.SessionIDFrom(r.Context())
	if !ok || !sok {
		respondError(w, h.logger, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	if err := h.service.Logout(r.Context(), sessionID, userID); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed", "error", err)
		respondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
