package auth

import (
	"context"

	"quickloan/internal/models"
)

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	GetUserTokenVersion(ctx context.Context, userID uint) (int, error)
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
}

// UserCache keeps session lookups off the database. Optional.
type UserCache interface {
	CacheUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	InvalidateUser(ctx context.Context, userID uint) error
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}
