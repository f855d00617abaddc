// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/userdeck/userdeck/internal/model"

// UserRequest is the request body shared by signup, create, and update.
// On update, empty fields leave the stored values untouched.
type UserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// LoginRequest represents the request body for authenticating.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse pairs a bearer token with the authenticated account.
type AuthResponse struct {
	Token string            `json:"token"`
	User  *model.PublicUser `json:"user"`
}

// UserListResponse wraps a list of directory records.
type UserListResponse struct {
	Data []*model.PublicUser `json:"data"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
