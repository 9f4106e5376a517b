package dto

import (
	"time"

	"github.com/spec-kit/document-tracking/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateUserRequest payload for provisioning accounts.
type CreateUserRequest struct {
	Username   string          `json:"username"`
	FullName   string          `json:"full_name"`
	Password   string          `json:"password"`
	Role       domain.UserRole `json:"role"`
	AreaID     *int64          `json:"area_id"`
	EmployeeID *int64          `json:"employee_id"`
}

// UserResponse omits credentials.
type UserResponse struct {
	ID         int64           `json:"id"`
	Username   string          `json:"username"`
	FullName   string          `json:"full_name"`
	Role       domain.UserRole `json:"role"`
	AreaID     *int64          `json:"area_id"`
	EmployeeID *int64          `json:"employee_id"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewUserResponse maps a user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		FullName:   user.FullName,
		Role:       user.Role,
		AreaID:     user.AreaID,
		EmployeeID: user.EmployeeID,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt,
	}
}
