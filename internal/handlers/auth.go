package handlers

import (
	"net/http"

	"eventos-web/internal/models"
	"eventos-web/internal/services"
	"eventos-web/internal/storage"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService services.AuthServiceInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SessionResponse reports whether the browser is signed in
type SessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Session       *models.Session `json:"session,omitempty"`
}

// Session validates the persisted identity with the backend
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := h.authService.CheckSession(r.Context(), storage.FromContext(r.Context()))
	writeJSON(w, http.StatusOK, SessionResponse{
		Authenticated: session != nil,
		Session:       session,
	})
}

// Login signs a staff user in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.StaffLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result := h.authService.Login(r.Context(), storage.FromContext(r.Context()), req.Username, req.Password)
	h.writeLoginResult(w, result)
}

// LoginAttender signs a buyer in
func (h *AuthHandler) LoginAttender(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result := h.authService.LoginAttender(r.Context(), storage.FromContext(r.Context()), req.Email, req.Password)
	h.writeLoginResult(w, result)
}

func (h *AuthHandler) writeLoginResult(w http.ResponseWriter, result services.LoginResult) {
	if !result.Success {
		writeJSON(w, http.StatusUnauthorized, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RegisterResponse is returned after a buyer account is created
type RegisterResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Register creates a buyer account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.AttenderRegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	id, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		ID:      id,
		Message: "account created, check your email to verify it before signing in",
	})
}

// Logout forgets the browser's identity
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Logout(storage.FromContext(r.Context()))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
