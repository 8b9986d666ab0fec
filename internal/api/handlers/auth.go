package handlers

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/api/middleware"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	Role        string `json:"role"`
	Profession  string `json:"profession"`
	Category    string `json:"category"`
	CompanyName string `json:"companyName"`
	Industry    string `json:"industry"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User         *domain.AppUser `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Phone:       req.Phone,
		Location:    req.Location,
		Role:        domain.Role(req.Role),
		Profession:  req.Profession,
		Category:    req.Category,
		CompanyName: req.CompanyName,
		Industry:    req.Industry,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

type UpdateProfileRequest struct {
	Name        *string  `json:"name"`
	Phone       *string  `json:"phone"`
	Location    *string  `json:"location"`
	CompanyName *string  `json:"companyName"`
	Industry    *string  `json:"industry"`
	Title       *string  `json:"title"`
	Category    *string  `json:"category"`
	Bio         *string  `json:"bio"`
	HourlyRate  *int64   `json:"hourlyRate"`
	Skills      []string `json:"skills"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Location:    req.Location,
		CompanyName: req.CompanyName,
		Industry:    req.Industry,
		Title:       req.Title,
		Category:    req.Category,
		Bio:         req.Bio,
		HourlyRate:  req.HourlyRate,
		Skills:      req.Skills,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPassword always answers 200 so the endpoint cannot be used to probe
// which emails have accounts.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	// The token is delivered out of band in production; it is never echoed
	// in the response.
	if _, err := h.authService.ResetPassword(r.Context(), req.Email); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "if the account exists, a reset link has been sent",
	})
}

type CompleteResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) CompleteReset(w http.ResponseWriter, r *http.Request) {
	var req CompleteResetRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		respondError(w, http.StatusBadRequest, "token and new password are required")
		return
	}

	if err := h.authService.CompleteReset(r.Context(), req.Token, req.NewPassword); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}
