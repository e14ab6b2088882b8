package repositories

import (
	"context"
	"fmt"

	"github.com/LukeA4591/GameTroveAPI/internal/models"

	"gorm.io/gorm"
)

// GORMGameRepository is a GORM implementation of GameRepository.
type GORMGameRepository struct {
	db *gorm.DB
}

// NewGORMGameRepository creates a new instance of GORMGameRepository.
func NewGORMGameRepository(db *gorm.DB) *GORMGameRepository {
	return &GORMGameRepository{
		db: db,
	}
}

// Search runs the aggregate game query with every filter condition applied
// and returns all matches in the requested order. Pagination is left to the
// caller, which also needs the full match count.
func (r *GORMGameRepository) Search(ctx context.Context, filter GameFilter) ([]models.GameView, error) {
	conds := BuildConditions(filter)

	var rows []gameRow
	query := conds.Apply(aggregateQuery(r.db.WithContext(ctx))).Order(OrderClause(filter.Sort))
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search games where %s: %w", conds, err)
	}

	games := make([]models.GameView, len(rows))
	for i, row := range rows {
		games[i] = row.view()
	}
	return games, nil
}

// GetView returns the detail view of one game, including its description and
// owner/wishlist counts.
func (r *GORMGameRepository) GetView(ctx context.Context, id uint) (*models.GameView, error) {
	var rows []gameRow
	query := BuildConditions(GameFilter{GameID: &id}).Apply(aggregateQuery(r.db.WithContext(ctx)))
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("game %d: %w", id, ErrNotFound)
	}

	row := rows[0]
	view := row.view()
	view.Description = &row.Description
	view.NumberOfOwners = &row.NumberOfOwners
	view.NumberOfWishlists = &row.NumberOfWishlists
	return &view, nil
}

// GetByID retrieves the stored game row.
func (r *GORMGameRepository) GetByID(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	if err := r.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		return nil, wrap(err, fmt.Sprintf("failed to get game %d", id))
	}
	return &game, nil
}

// TitleTaken reports whether another game already uses title. excludeID is
// ignored when zero.
func (r *GORMGameRepository) TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Game{}).Where("title = ?", title)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check title %q: %w", title, err)
	}
	return count > 0, nil
}

func (r *GORMGameRepository) HasReviews(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("game_id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count reviews for game %d: %w", id, err)
	}
	return count > 0, nil
}

// Create inserts the game and its platform links in one transaction.
func (r *GORMGameRepository) Create(ctx context.Context, game *models.Game, platformIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(game).Error; err != nil {
			return wrap(err, "failed to create game")
		}
		return insertPlatforms(tx, game.ID, platformIDs)
	})
}

// Update writes the editable columns of game. A nil platformIDs keeps the
// current platform set; otherwise the set is replaced.
func (r *GORMGameRepository) Update(ctx context.Context, game *models.Game, platformIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Game{ID: game.ID}).
			Select("title", "description", "genre_id", "price").
			Updates(game)
		if res.Error != nil {
			return wrap(res.Error, fmt.Sprintf("failed to update game %d", game.ID))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("game %d not found for update: %w", game.ID, ErrNotFound)
		}
		if platformIDs == nil {
			return nil
		}
		if err := tx.Where("game_id = ?", game.ID).Delete(&models.GamePlatform{}).Error; err != nil {
			return fmt.Errorf("failed to clear platforms of game %d: %w", game.ID, err)
		}
		return insertPlatforms(tx, game.ID, platformIDs)
	})
}

// Delete removes the game together with its platform links and ledger rows.
// A reviewed game is refused with ErrReviewed and nothing is deleted.
func (r *GORMGameRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reviews int64
		if err := tx.Model(&models.Review{}).Where("game_id = ?", id).Count(&reviews).Error; err != nil {
			return fmt.Errorf("failed to count reviews of game %d: %w", id, err)
		}
		if reviews > 0 {
			return fmt.Errorf("game %d has %d reviews: %w", id, reviews, ErrReviewed)
		}
		for _, dependent := range []interface{}{&models.GamePlatform{}, &models.Owned{}, &models.Wishlist{}} {
			if err := tx.Where("game_id = ?", id).Delete(dependent).Error; err != nil {
				return fmt.Errorf("failed to delete rows of game %d: %w", id, err)
			}
		}
		res := tx.Delete(&models.Game{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete game %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("game %d not found for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
}

func insertPlatforms(tx *gorm.DB, gameID uint, platformIDs []uint) error {
	if len(platformIDs) == 0 {
		return nil
	}
	links := make([]models.GamePlatform, len(platformIDs))
	for i, pid := range platformIDs {
		links[i] = models.GamePlatform{GameID: gameID, PlatformID: pid}
	}
	if err := tx.Create(&links).Error; err != nil {
		return wrap(err, fmt.Sprintf("failed to link platforms to game %d", gameID))
	}
	return nil
}

// GORMReferenceRepository is a GORM implementation of ReferenceRepository.
type GORMReferenceRepository struct {
	db *gorm.DB
}

func NewGORMReferenceRepository(db *gorm.DB) *GORMReferenceRepository {
	return &GORMReferenceRepository{db: db}
}

func (r *GORMReferenceRepository) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	if err := r.db.WithContext(ctx).Order("id").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (r *GORMReferenceRepository) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	var platforms []models.Platform
	if err := r.db.WithContext(ctx).Order("id").Find(&platforms).Error; err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}
	return platforms, nil
}

// MissingGenres returns the ids, in input order, that name no genre.
func (r *GORMReferenceRepository) MissingGenres(ctx context.Context, ids []uint) ([]uint, error) {
	return r.missing(ctx, &models.Genre{}, ids)
}

// MissingPlatforms returns the ids, in input order, that name no platform.
func (r *GORMReferenceRepository) MissingPlatforms(ctx context.Context, ids []uint) ([]uint, error) {
	return r.missing(ctx, &models.Platform{}, ids)
}

func (r *GORMReferenceRepository) missing(ctx context.Context, model interface{}, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := r.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to look up reference ids: %w", err)
	}
	known := make(map[uint]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
