package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/evroutex/fleet-dispatch/internal/auth"
	"github.com/evroutex/fleet-dispatch/internal/middleware"
	"github.com/evroutex/fleet-dispatch/internal/models"
)

// AuthHandler handles login, registration and logout.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates an admin (username and password, exact match) or a
// driver (vehicle number only).
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.LoginID == "" {
		http.Error(w, "login_id is required", http.StatusBadRequest)
		return
	}

	var (
		resp *models.LoginResponse
		err  error
	)
	switch req.UserType {
	case "admin":
		resp, err = h.authService.AdminLogin(r.Context(), req.LoginID, req.Password)
	case "driver":
		resp, err = h.authService.DriverLogin(r.Context(), req.LoginID)
	default:
		http.Error(w, "user_type must be admin or driver", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Register self-registers a driver and returns an authenticated session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Logout destroys the caller's session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	h.authService.Logout(claims.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
