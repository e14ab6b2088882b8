package repositories

import (
	"context"
	"fmt"

	"github.com/LukeA4591/GameTroveAPI/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository defines data access for game reviews.
type ReviewRepository interface {
	ListByGame(ctx context.Context, gameID uint) ([]models.ReviewView, error)
	HasReviewed(ctx context.Context, gameID, userID uint) (bool, error)
	Create(ctx context.Context, review *models.Review) error
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// ListByGame returns the game's reviews, newest first.
func (r *GORMReviewRepository) ListByGame(ctx context.Context, gameID uint) ([]models.ReviewView, error) {
	var rows []struct {
		ReviewerID        uint    `gorm:"column:reviewer_id"`
		ReviewerFirstName string  `gorm:"column:reviewer_first_name"`
		ReviewerLastName  string  `gorm:"column:reviewer_last_name"`
		Rating            int     `gorm:"column:rating"`
		Review            *string `gorm:"column:review"`
		Timestamp         sqlTime `gorm:"column:timestamp"`
	}
	err := r.db.WithContext(ctx).
		Table("game_review").
		Select("game_review.user_id AS reviewer_id, " +
			"COALESCE(users.first_name, '') AS reviewer_first_name, " +
			"COALESCE(users.last_name, '') AS reviewer_last_name, " +
			"game_review.rating AS rating, game_review.review AS review, game_review.timestamp AS timestamp").
		Joins("LEFT JOIN users ON users.id = game_review.user_id").
		Where("game_review.game_id = ?", gameID).
		Order("game_review.timestamp DESC, game_review.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews of game %d: %w", gameID, err)
	}

	reviews := make([]models.ReviewView, len(rows))
	for i, row := range rows {
		reviews[i] = models.ReviewView{
			ReviewerID:        row.ReviewerID,
			ReviewerFirstName: row.ReviewerFirstName,
			ReviewerLastName:  row.ReviewerLastName,
			Rating:            row.Rating,
			Review:            row.Review,
			Timestamp:         row.Timestamp.Time,
		}
	}
	return reviews, nil
}

func (r *GORMReviewRepository) HasReviewed(ctx context.Context, gameID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("game_id = ? AND user_id = ?", gameID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check review of game %d by user %d: %w", gameID, userID, err)
	}
	return count > 0, nil
}

// Create inserts a review. A second review by the same user yields
// ErrDuplicate.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return wrap(err, fmt.Sprintf("failed to review game %d", review.GameID))
	}
	return nil
}
