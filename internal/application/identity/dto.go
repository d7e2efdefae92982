package identity

import "time"

// LoginInput contains the input for admin login
type LoginInput struct {
	Username string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Token     string
	TokenType string
	SessionID string
	Username  string
	ExpiresAt time.Time
}

// SessionInfo describes the current session
type SessionInfo struct {
	SessionID string        `json:"session_id"`
	Username  string        `json:"username"`
	IssuedAt  time.Time     `json:"issued_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Remaining time.Duration `json:"remaining_seconds"`
}

// ProfileResponse is the admin profile
type ProfileResponse struct {
	Username string `json:"username"`
	ImageURL string `json:"imageUrl"`
}

// ChangePasswordInput contains the input for changing the admin password
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}
