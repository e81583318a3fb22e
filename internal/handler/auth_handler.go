package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/mfarouk/go-account-service/internal/middleware"
	"github.com/mfarouk/go-account-service/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		sendJSONError(w, "Username and password required", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyExists) {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"message":   "Account created successfully",
		"username":  user.Username,
		"is_active": user.IsActive,
	})
}

// Login authenticates the user and returns the new session id together with
// the stored bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		sendJSONError(w, "Username and password required", http.StatusBadRequest)
		return
	}

	sessionID, token, user, err := h.authService.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			sendJSONError(w, "Too many login attempts. Try again later.", http.StatusTooManyRequests)
		case errors.Is(err, service.ErrInvalidCredentials):
			sendJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message":    "Login successful",
		"session_id": sessionID,
		"token":      token,
		"user_data":  user,
	})
}

// Logout clears the authenticated user's session. Requires the session guard.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())

	if err := h.authService.Logout(r.Context(), username); err != nil {
		sendJSONError(w, "Failed to logout", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully"})
}

// AccountInfo returns the full record for a password-authenticated lookup.
// Unknown username and wrong password get the same response.
func (h *AuthHandler) AccountInfo(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		sendJSONError(w, "Username and password required", http.StatusBadRequest)
		return
	}

	user, err := h.authService.AccountInfo(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			sendJSONError(w, "No account found with these credentials", http.StatusNotFound)
			return
		}
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"account_info": user})
}

// Account returns the authenticated user's record. Requires the session guard.
func (h *AuthHandler) Account(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())

	user, err := h.authService.GetUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			sendJSONError(w, "No account found", http.StatusNotFound)
			return
		}
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"user_data": user})
}

// Reissue signs a fresh bearer token from the current record, replacing the
// stored snapshot. Requires the session guard.
func (h *AuthHandler) Reissue(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())

	token, err := h.authService.Reissue(r.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			sendJSONError(w, "No account found", http.StatusNotFound)
			return
		}
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// clientIP extracts the originating address; chi's RealIP middleware has
// already rewritten RemoteAddr when forwarding headers are present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Helper function to send JSON error responses
func sendJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
