package services_test

import (
	"context"

	"github.com/LukeA4591/GameTroveAPI/internal/models"
	"github.com/LukeA4591/GameTroveAPI/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SetToken(ctx context.Context, id uint, token *string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) ClearToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) error {
	args := m.Called(ctx, id, changes)
	return args.Error(0)
}

// MockGameRepository is a mock implementation of repositories.GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Search(ctx context.Context, filter repositories.GameFilter) ([]models.GameView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameView), args.Error(1)
}

func (m *MockGameRepository) GetView(ctx context.Context, id uint) (*models.GameView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameView), args.Error(1)
}

func (m *MockGameRepository) GetByID(ctx context.Context, id uint) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error) {
	args := m.Called(ctx, title, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGameRepository) HasReviews(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockGameRepository) Create(ctx context.Context, game *models.Game, platformIDs []uint) error {
	args := m.Called(ctx, game, platformIDs)
	return args.Error(0)
}

func (m *MockGameRepository) Update(ctx context.Context, game *models.Game, platformIDs []uint) error {
	args := m.Called(ctx, game, platformIDs)
	return args.Error(0)
}

func (m *MockGameRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReferenceRepository is a mock implementation of repositories.ReferenceRepository
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) ListGenres(ctx context.Context) ([]models.Genre, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockReferenceRepository) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Platform), args.Error(1)
}

func (m *MockReferenceRepository) MissingGenres(ctx context.Context, ids []uint) ([]uint, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockReferenceRepository) MissingPlatforms(ctx context.Context, ids []uint) ([]uint, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockLedgerRepository is a mock implementation of repositories.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Snapshot(ctx context.Context, gameID, userID uint) (*models.LedgerSnapshot, error) {
	args := m.Called(ctx, gameID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerSnapshot), args.Error(1)
}

func (m *MockLedgerRepository) AddOwned(ctx context.Context, gameID, userID uint) error {
	args := m.Called(ctx, gameID, userID)
	return args.Error(0)
}

func (m *MockLedgerRepository) AddWishlist(ctx context.Context, gameID, userID uint) error {
	args := m.Called(ctx, gameID, userID)
	return args.Error(0)
}

func (m *MockLedgerRepository) Remove(ctx context.Context, collection models.Collection, gameID, userID uint) (bool, error) {
	args := m.Called(ctx, collection, gameID, userID)
	return args.Bool(0), args.Error(1)
}

// MockReviewRepository is a mock implementation of repositories.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) ListByGame(ctx context.Context, gameID uint) ([]models.ReviewView, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).([]models.ReviewView), args.Error(1)
}

func (m *MockReviewRepository) HasReviewed(ctx context.Context, gameID, userID uint) (bool, error) {
	args := m.Called(ctx, gameID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

// MockTokenResolver is a mock implementation of services.TokenResolver
type MockTokenResolver struct {
	mock.Mock
}

func (m *MockTokenResolver) ResolveToken(ctx context.Context, token string) (uint, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uint), args.Error(1)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}
