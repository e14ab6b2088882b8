package repositories

import (
	"context"

	"github.com/LukeA4591/GameTroveAPI/internal/models"
)

// GameRepository defines data access for games and their platform links.
type GameRepository interface {
	Search(ctx context.Context, filter GameFilter) ([]models.GameView, error)
	GetView(ctx context.Context, id uint) (*models.GameView, error)
	GetByID(ctx context.Context, id uint) (*models.Game, error)
	TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error)
	HasReviews(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, game *models.Game, platformIDs []uint) error
	Update(ctx context.Context, game *models.Game, platformIDs []uint) error
	Delete(ctx context.Context, id uint) error
}

// ReferenceRepository reads the static genre and platform tables.
type ReferenceRepository interface {
	ListGenres(ctx context.Context) ([]models.Genre, error)
	ListPlatforms(ctx context.Context) ([]models.Platform, error)
	MissingGenres(ctx context.Context, ids []uint) ([]uint, error)
	MissingPlatforms(ctx context.Context, ids []uint) ([]uint, error)
}
