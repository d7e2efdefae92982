package handler

import "time"

// LoginRequest represents the request body for admin login
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse represents the response body for a successful login
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	SessionID   string    `json:"session_id"`
	Username    string    `json:"username"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,max=128"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}
