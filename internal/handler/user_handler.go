package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/internal/service"
	"github.com/cyberkid042/auth-identity-service/pkg/apierror"
)

var errInvalidUserID = apierror.Validation(apierror.CodeValidation, "Invalid user id")

type UserHandler struct {
	responder
	service *service.UserService
}

func NewUserHandler(service *service.UserService, exposeDetails bool) *UserHandler {
	return &UserHandler{responder: responder{exposeDetails: exposeDetails}, service: service}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.UserListResponse{Users: users})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.UserResponse{User: user})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var payload model.UpdateUserRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.service.Update(r.Context(), userID, payload.ToUpdate())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.UserUpdatedResponse{
		Message: "User updated successfully",
		User:    user,
	})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.MessageResponse{Message: "User deleted successfully"})
}

func parseUserID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidUserID
	}
	return id, nil
}
