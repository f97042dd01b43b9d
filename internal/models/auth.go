package models

import "time"

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token     string       `json:"token"` // JWT token, also set as the session cookie
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
