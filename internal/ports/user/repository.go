package user

import (
	"context"
	"errors"
	"yatube/internal/core/user"
)

var ErrNotFound = errors.New("user not found")

// UserRepository port for storing and loading accounts
type UserRepository interface {
	Create(ctx context.Context, user *user.User) (*user.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Identity is the signed-in user carried by a request.
type Identity struct {
	UserID   string
	Username string
}

type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Family   string `json:"family"`
}

func ToUserDTO(u *user.User) *UserDTO {
	return &UserDTO{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Family:   u.Family,
	}
}
