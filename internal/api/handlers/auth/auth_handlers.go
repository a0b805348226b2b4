// internal/api/handlers/auth/auth_handlers.go
package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"musiccatalog/internal/api/middleware"
	"musiccatalog/internal/lib/logger/utils"
	"musiccatalog/internal/lib/response"
	"musiccatalog/internal/models"
	"musiccatalog/internal/service"
	"musiccatalog/internal/storage"
)

type AuthHandlers struct {
	authService *service.AuthService
}

func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

type loginResponse struct {
	Message      string               `json:"message"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	User         models.PublicProfile `json:"user"`
}

type tokenResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token,omitempty"`
	Message     string `json:"message"`
}

// @Summary Register a new account
// @Description Create an unverified account and send a verification email.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.RegisterRequest true "Registration fields"
// @Success 201 {object} map[string]string
// @Failure 400 {string} string "Bad Request"
// @Failure 409 {string} string "Conflict"
// @Router /auth/register [post]
func (h *AuthHandlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("RegisterHandler called")
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Logger.Warn("RegisterHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, storage.ErrDuplicateUser) {
			response.Error(w, http.StatusConflict, "Username or email already exists")
			return
		}
		utils.Logger.Error("RegisterHandler - authService.Register failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	response.Message(w, http.StatusCreated, "Registration successful. Please check your email to verify your account.")
}

// @Summary Log in
// @Description Username or email plus password; unverified accounts are rejected.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 400 {string} string "Bad Request"
// @Failure 401 {string} string "Unauthorized"
// @Router /auth/login [post]
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("LoginHandler called")
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Logger.Warn("LoginHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Identifier == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "Username/email and password are required")
		return
	}

	user, access, refresh, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotVerified) {
			response.Error(w, http.StatusUnauthorized, "Please verify your email before logging in")
			return
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.Logger.Error("LoginHandler - authService.Login failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{
		Message:      "Login successful",
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Public(),
	})
}

// @Summary Log out
// @Description Revoke a refresh token.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "Bad Request"
// @Router /auth/logout [post]
func (h *AuthHandlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("LogoutHandler called")
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		response.Error(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			response.Error(w, http.StatusBadRequest, "Invalid refresh token")
			return
		}
		utils.Logger.Error("LogoutHandler - authService.Logout failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	response.Message(w, http.StatusOK, "Logout successful")
}

// @Summary Get own profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.PublicProfile
// @Failure 401 {string} string "Unauthorized"
// @Router /auth/profile [get]
func (h *AuthHandlers) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, "User not found")
			return
		}
		utils.Logger.Error("GetProfileHandler - authService.GetProfile failed", zap.Error(err), zap.Int("user_id", userID))
		response.Error(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	response.JSON(w, http.StatusOK, user.Public())
}

// @Summary Update own profile
// @Description Name changes apply immediately; an email change sends a confirmation link to the new address first.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {string} string "Bad Request"
// @Failure 401 {string} string "Unauthorized"
// @Router /auth/profile [put]
func (h *AuthHandlers) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("UpdateProfileHandler called")
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Logger.Warn("UpdateProfileHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, emailPending, err := h.authService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, service.ErrEmailTaken) {
			response.Error(w, http.StatusBadRequest, "Email already exists")
			return
		}
		utils.Logger.Error("UpdateProfileHandler - authService.UpdateProfile failed", zap.Error(err), zap.Int("user_id", userID))
		response.Error(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	if emailPending {
		response.Message(w, http.StatusOK, "Verification email sent to new email address")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    user.Public(),
	})
}

// @Summary Delete own account
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {string} string "Unauthorized"
// @Router /auth/profile [delete]
func (h *AuthHandlers) DeleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.DeleteProfile(r.Context(), userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, "User not found")
			return
		}
		utils.Logger.Error("DeleteProfileHandler - authService.DeleteProfile failed", zap.Error(err), zap.Int("user_id", userID))
		response.Error(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Verify email address
// @Description Consume a registration verification token; flips the account to verified.
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "Bad Request"
// @Router /auth/verify-email [get]
func (h *AuthHandlers) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("VerifyEmailHandler called")
	token := r.URL.Query().Get("token")
	if token == "" {
		response.Error(w, http.StatusBadRequest, "Verification token is required")
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			response.Error(w, http.StatusBadRequest, "Invalid verification token")
			return
		}
		utils.Logger.Error("VerifyEmailHandler - authService.VerifyEmail failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to verify email")
		return
	}

	response.Message(w, http.StatusOK, "Email verified successfully")
}

// @Summary Confirm an email change
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Param email query string true "New email address"
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "Bad Request"
// @Router /auth/verify-email-update [get]
func (h *AuthHandlers) VerifyEmailUpdateHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("VerifyEmailUpdateHandler called")
	token := r.URL.Query().Get("token")
	email := r.URL.Query().Get("email")
	if token == "" || email == "" {
		response.Error(w, http.StatusBadRequest, "Token and email are required")
		return
	}

	if err := h.authService.VerifyEmailUpdate(r.Context(), token, email); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			response.Error(w, http.StatusBadRequest, "Invalid token")
			return
		}
		utils.Logger.Error("VerifyEmailUpdateHandler - authService.VerifyEmailUpdate failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to update email")
		return
	}

	response.Message(w, http.StatusOK, "Email updated successfully")
}

// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Not Found"
// @Router /auth/forgot-password [post]
func (h *AuthHandlers) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("ForgotPasswordHandler called")
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identifier == "" {
		response.Error(w, http.StatusBadRequest, "Username or email is required")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Identifier); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, "User not found")
			return
		}
		utils.Logger.Error("ForgotPasswordHandler - authService.ForgotPassword failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to send reset link")
		return
	}

	response.Message(w, http.StatusOK, "Password reset link sent to your email")
}

// @Summary Reset password
// @Description Consume a reset token and store the new password.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "Bad Request"
// @Router /auth/reset-password [post]
func (h *AuthHandlers) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("ResetPasswordHandler called")
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "Token and new password are required")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			response.Error(w, http.StatusBadRequest, "Invalid token")
			return
		}
		utils.Logger.Error("ResetPasswordHandler - authService.ResetPassword failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	response.Message(w, http.StatusOK, "Password reset successful")
}

// @Summary Verify an access token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} tokenResponse
// @Failure 400 {object} tokenResponse
// @Failure 401 {object} tokenResponse
// @Router /auth/verify-token [post]
func (h *AuthHandlers) VerifyTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		response.JSON(w, http.StatusBadRequest, tokenResponse{Success: false, Message: "Token is required"})
		return
	}

	if err := h.authService.VerifyAccessToken(req.AccessToken); err != nil {
		response.JSON(w, http.StatusUnauthorized, tokenResponse{Success: false, Message: "Token is invalid or expired"})
		return
	}

	response.JSON(w, http.StatusOK, tokenResponse{Success: true, Message: "Token is valid"})
}

// @Summary Refresh an access token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} tokenResponse
// @Failure 400 {object} tokenResponse
// @Router /auth/refresh-token [post]
func (h *AuthHandlers) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		response.JSON(w, http.StatusBadRequest, tokenResponse{Success: false, Message: "Refresh token is required"})
		return
	}

	access, err := h.authService.RefreshAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			response.JSON(w, http.StatusBadRequest, tokenResponse{Success: false, Message: "Invalid refresh token"})
			return
		}
		utils.Logger.Error("RefreshTokenHandler - authService.RefreshAccessToken failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to refresh token")
		return
	}

	response.JSON(w, http.StatusOK, tokenResponse{Success: true, AccessToken: access, Message: "Token refreshed successfully"})
}
