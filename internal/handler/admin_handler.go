package handler

import "net/http"

type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeClaims(w, r, "Welcome to the admin dashboard")
}
