package repositories

import (
	"context"

	"github.com/LukeA4591/GameTroveAPI/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	SetToken(ctx context.Context, id uint, token *string) error
	ClearToken(ctx context.Context, token string) (bool, error)
	Update(ctx context.Context, id uint, changes map[string]interface{}) error
}
