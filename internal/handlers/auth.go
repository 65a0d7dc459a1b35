package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kitengela/studio/internal/auth"
	"github.com/kitengela/studio/internal/models"
	pkghttp "github.com/kitengela/studio/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, fullName, email, password string) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Me(ctx context.Context, userID string) (*models.PublicUser, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    *models.PublicUser `json:"user"`
}

// MeResponse wraps the caller's account
type MeResponse struct {
	Success bool               `json:"success"`
	User    *models.PublicUser `json:"user"`
}

// VerifyResponse reports the claims of a valid token
type VerifyResponse struct {
	Valid bool                `json:"valid"`
	User  *models.TokenClaims `json:"user"`
}

// Register handles self-registration
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteErrorWithDetails(w, http.StatusBadRequest, "bad_request", "All fields are required", err.Error())
		return
	}

	if _, err := h.service.Register(r.Context(), req.FullName, req.Email, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, MessageResponse{
		Success: true,
		Message: "Account created successfully! Please wait for admin approval.",
	})
}

// Login handles user login
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Email and password are required.")
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Message: "Login successful.",
		Token:   result.Token,
		User:    result.User,
	})
}

// Me returns the caller's current account state
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	user, err := h.service.Me(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MeResponse{Success: true, User: user})
}

// Verify echoes the claims of a valid token
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, VerifyResponse{Valid: true, User: claims})
}
