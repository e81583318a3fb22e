package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mfarouk/go-account-service/internal/service"
)

// AdminKeyHeader carries the per-user admin capability key.
const AdminKeyHeader = "X-Admin-Key"

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

type updateUserRequest struct {
	Username string         `json:"username"`
	Updates  map[string]any `json:"updates"`
}

type activateRequest struct {
	Username string `json:"username"`
}

// UpdateUser applies an admin patch to a user record. The admin key check
// order is fixed: missing key, then unknown user, then wrong key.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	adminKey := r.Header.Get(AdminKeyHeader)
	_, err := h.adminService.UpdateUserFields(r.Context(), req.Username, adminKey, req.Updates)
	if err != nil {
		sendAdminError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "User updated successfully"})
}

// ActivateAccount marks a user active and enables every feature flag.
func (h *AdminHandler) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	adminKey := r.Header.Get(AdminKeyHeader)
	_, err := h.adminService.ActivateAccount(r.Context(), req.Username, adminKey)
	if err != nil {
		sendAdminError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Account activated successfully"})
}

func sendAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		sendJSONError(w, "Admin key required", http.StatusUnauthorized)
	case errors.Is(err, service.ErrNotFound):
		sendJSONError(w, "User not found", http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		sendJSONError(w, "Invalid admin key", http.StatusForbidden)
	default:
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
