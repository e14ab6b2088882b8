package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LukeA4591/GameTroveAPI/internal/models"
	"github.com/LukeA4591/GameTroveAPI/internal/repositories"
)

const (
	MinRating = 1
	MaxRating = 10
)

// ReviewService lists and records game reviews.
type ReviewService struct {
	base
	reviews repositories.ReviewRepository
	games   repositories.GameRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, games repositories.GameRepository, opts ...Option) *ReviewService {
	return &ReviewService{
		base:    newBase(opts),
		reviews: reviews,
		games:   games,
	}
}

// List returns a game's reviews, newest first.
func (s *ReviewService) List(ctx context.Context, gameID uint) ([]models.ReviewView, error) {
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("game %d: %w", gameID, ErrNotFound)
		}
		return nil, transient("get game", err)
	}
	reviews, err := s.reviews.ListByGame(ctx, gameID)
	if err != nil {
		return nil, transient("list reviews", err)
	}
	return reviews, nil
}

// Add records userID's review of a game. Creators cannot review their own
// games and each user reviews a game at most once.
func (s *ReviewService) Add(ctx context.Context, gameID, userID uint, rating int, text *string) (models.ResultCode, error) {
	if rating < MinRating || rating > MaxRating {
		return "", fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinRating, MaxRating)
	}

	game, err := s.games.GetByID(ctx, gameID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.ResultGameDNE, nil
	}
	if err != nil {
		return "", transient("get game", err)
	}
	if game.CreatorID == userID {
		return models.ResultCreator, nil
	}

	reviewed, err := s.reviews.HasReviewed(ctx, gameID, userID)
	if err != nil {
		return "", transient("check review", err)
	}
	if reviewed {
		return models.ResultReviewed, nil
	}

	review := &models.Review{
		GameID:    gameID,
		UserID:    userID,
		Rating:    rating,
		Review:    text,
		Timestamp: time.Now().UTC(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.ResultReviewed, nil
		}
		return "", transient("create review", err)
	}

	s.log.WithField("game_id", gameID).WithField("user_id", userID).Info("review added")
	s.publish(EventReviewCreated, gameID, userID)
	return models.ResultSuccess, nil
}
