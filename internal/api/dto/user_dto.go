package dto

import (
	"time"

	"github.com/spec-kit/ticketing-api/internal/domain"
)

// SignupRequest payload for public registration.
type SignupRequest struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CreateUserRequest payload for admin account creation.
type CreateUserRequest struct {
	GivenName  string      `json:"given_name"`
	FamilyName string      `json:"family_name"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Role       domain.Role `json:"role"`
}

// UpdateUserRequest payload for partial profile updates.
type UpdateUserRequest struct {
	GivenName  *string `json:"given_name"`
	FamilyName *string `json:"family_name"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
}

// ChangeRoleRequest payload for role changes.
type ChangeRoleRequest struct {
	Role domain.Role `json:"role"`
}

// UserResponse is the outward account shape. The password hash never
// appears here.
type UserResponse struct {
	ID         string      `json:"id"`
	GivenName  string      `json:"given_name"`
	FamilyName string      `json:"family_name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewUserResponse maps a domain user, stripping the hash.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		GivenName:  user.GivenName,
		FamilyName: user.FamilyName,
		Email:      user.Email,
		Role:       user.Role,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}
