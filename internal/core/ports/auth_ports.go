package ports

import (
	"context"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
)

type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	Create(ctx context.Context, admin *domain.Admin) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.AccessToken, error)
	// Authenticate validates an access token and returns the admin id it was issued to.
	Authenticate(token string) (int64, error)
	ChangePassword(ctx context.Context, adminID int64, currentPassword, newPassword string) error
	GetAdmin(ctx context.Context, id int64) (*domain.Admin, error)
	EnsureAdmin(ctx context.Context, username, password string) error
}
