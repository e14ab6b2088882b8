package repositories

import (
	"context"
	"fmt"

	"github.com/LukeA4591/GameTroveAPI/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrap(err, "failed to create user")
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, wrap(err, fmt.Sprintf("failed to get user by email %s", email))
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrap(err, fmt.Sprintf("failed to get user by ID %d", id))
	}
	return &user, nil
}

// GetByToken retrieves the user whose current session token is token.
func (r *GORMUserRepository) GetByToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "auth_token = ?", token).Error; err != nil {
		return nil, wrap(err, "failed to get user by token")
	}
	return &user, nil
}

func (r *GORMUserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", id, err)
	}
	return count > 0, nil
}

// SetToken stores the user's session token. A nil token logs the user out.
func (r *GORMUserRepository) SetToken(ctx context.Context, id uint, token *string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("auth_token", token)
	if res.Error != nil {
		return fmt.Errorf("failed to set token of user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// ClearToken removes token from whichever user holds it and reports whether
// any user did.
func (r *GORMUserRepository) ClearToken(ctx context.Context, token string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("auth_token = ?", token).Update("auth_token", nil)
	if res.Error != nil {
		return false, fmt.Errorf("failed to clear token: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Update applies the given column changes to the user.
func (r *GORMUserRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return wrap(res.Error, fmt.Sprintf("failed to update user %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}
