package dto

import (
	"time"

	"github.com/spec-kit/school-service/internal/domain"
)

// UserProfile is the public view of an account.
type UserProfile struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserProfile `json:"user"`
}

// RoleResponse lists a selectable role.
type RoleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewUserProfile maps a stored user, leaving the digest behind.
func NewUserProfile(user domain.User) UserProfile {
	return UserProfile{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.RoleName,
	}
}

func NewAuthResponse(token domain.Token, user domain.User) AuthResponse {
	return AuthResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      NewUserProfile(user),
	}
}

func NewRoleResponses(roles []domain.Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, RoleResponse{ID: role.ID, Name: role.Name})
	}
	return out
}
