package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
)

// SignupInput carries the registration credentials.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginInput carries the login credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput carries the expired access token plus the refresh secret.
type RefreshInput struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthTokens is the minted token pair returned to clients.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UserDTO is the public projection of an auth user.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuthResult pairs the user with a fresh token set.
type AuthResult struct {
	User   UserDTO    `json:"user"`
	Tokens AuthTokens `json:"tokens"`
}

func userFromModel(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
