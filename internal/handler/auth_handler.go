package handler

import (
	"net/http"
	"strings"

	"github.com/cyberkid042/auth-identity-service/internal/middleware"
	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/internal/service"
)

type AuthHandler struct {
	responder
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService, exposeDetails bool) *AuthHandler {
	return &AuthHandler{responder: responder{exposeDetails: exposeDetails}, service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, model.RegisterResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.LoginResponse{
		Message:      "Login successful",
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), strings.TrimSpace(payload.RefreshToken))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.RefreshResponse{
		Message:      "Tokens refreshed successfully",
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Profile echoes the verified claims; it does not read the store.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	writeClaims(w, r, "Profile accessed successfully")
}

func writeClaims(w http.ResponseWriter, r *http.Request, message string) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	writeSuccess(w, http.StatusOK, model.ClaimsResponse{Message: message, User: claims})
}
