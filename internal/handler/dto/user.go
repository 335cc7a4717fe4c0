// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/stockroom/stockroom/internal/model"
	"github.com/stockroom/stockroom/internal/service"
)

// SignupRequest represents the request body for creating an account.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses. It has no password field
// by construction.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupResponse is the signup success body. The user record travels under
// "result" here and under "user" on the login path; clients and issued
// tokens both carry that asymmetry.
type SignupResponse struct {
	Result *UserResponse `json:"result"`
	Auth   string        `json:"auth"`
}

// LoginResponse is the login success body.
type LoginResponse struct {
	User *UserResponse `json:"user"`
	Auth string        `json:"auth"`
}

// ProfileResponse is the profile view body.
type ProfileResponse struct {
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	AccountCreated string               `json:"accountCreated"`
	TotalProducts  int64                `json:"totalProducts"`
	RecentProducts []ProductRefResponse `json:"recentProducts"`
}

// ProductRefResponse is a lightweight product reference in the profile view.
type ProductRefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UpdateUsernameRequest represents the request body for renaming an account.
type UpdateUsernameRequest struct {
	Name string `json:"name"`
}

// UpdateUsernameResponse is the rename success body.
type UpdateUsernameResponse struct {
	Success bool          `json:"success"`
	User    *UserResponse `json:"user"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// ToProfileResponse converts profile output to ProfileResponse DTO.
func ToProfileResponse(profile *service.ProfileOutput) *ProfileResponse {
	recent := make([]ProductRefResponse, len(profile.RecentProducts))
	for i, ref := range profile.RecentProducts {
		recent[i] = ProductRefResponse{ID: ref.ID, Name: ref.Name}
	}
	return &ProfileResponse{
		Name:           profile.Name,
		Email:          profile.Email,
		AccountCreated: profile.AccountCreated,
		TotalProducts:  profile.TotalProducts,
		RecentProducts: recent,
	}
}
