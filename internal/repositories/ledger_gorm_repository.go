package repositories

import (
	"context"
	"fmt"

	"github.com/LukeA4591/GameTroveAPI/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMLedgerRepository is a GORM implementation of LedgerRepository.
type GORMLedgerRepository struct {
	db *gorm.DB
}

func NewGORMLedgerRepository(db *gorm.DB) *GORMLedgerRepository {
	return &GORMLedgerRepository{db: db}
}

const snapshotQuery = `SELECT game.creator_id AS creator_id,
	EXISTS (SELECT 1 FROM owned o WHERE o.game_id = game.id AND o.user_id = ?) AS owned,
	EXISTS (SELECT 1 FROM wishlist w WHERE w.game_id = game.id AND w.user_id = ?) AS wishlisted
FROM game WHERE game.id = ?`

// Snapshot reads the game's creator and the pair's membership in both
// collections with a single statement.
func (r *GORMLedgerRepository) Snapshot(ctx context.Context, gameID, userID uint) (*models.LedgerSnapshot, error) {
	var rows []struct {
		CreatorID  uint `gorm:"column:creator_id"`
		Owned      bool `gorm:"column:owned"`
		Wishlisted bool `gorm:"column:wishlisted"`
	}
	if err := r.db.WithContext(ctx).Raw(snapshotQuery, userID, userID, gameID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read ledger state of game %d for user %d: %w", gameID, userID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}
	return &models.LedgerSnapshot{
		CreatorID:  rows[0].CreatorID,
		Owned:      rows[0].Owned,
		Wishlisted: rows[0].Wishlisted,
	}, nil
}

// lockGame takes a row lock on the game so that concurrent ledger writes for
// it run one after another. sqlite ignores the locking clause; its writers
// are already serialized.
func lockGame(tx *gorm.DB, gameID uint) error {
	var ids []uint
	err := tx.Model(&models.Game{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", gameID).
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("failed to lock game %d: %w", gameID, err)
	}
	if len(ids) == 0 {
		return fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}
	return nil
}

// AddOwned inserts the owned row and clears any wishlist row for the pair
// in the same transaction. A concurrent duplicate yields ErrDuplicate.
func (r *GORMLedgerRepository) AddOwned(ctx context.Context, gameID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGame(tx, gameID); err != nil {
			return err
		}
		if err := tx.Create(&models.Owned{GameID: gameID, UserID: userID}).Error; err != nil {
			return wrap(err, fmt.Sprintf("failed to mark game %d owned by user %d", gameID, userID))
		}
		if err := tx.Where("game_id = ? AND user_id = ?", gameID, userID).Delete(&models.Wishlist{}).Error; err != nil {
			return fmt.Errorf("failed to clear wishlist of game %d for user %d: %w", gameID, userID, err)
		}
		return nil
	})
}

// AddWishlist inserts the wishlist row unless the pair is owned by the time
// the transaction runs, in which case ErrAlreadyOwned is returned and
// nothing is written.
func (r *GORMLedgerRepository) AddWishlist(ctx context.Context, gameID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGame(tx, gameID); err != nil {
			return err
		}
		if err := tx.Create(&models.Wishlist{GameID: gameID, UserID: userID}).Error; err != nil {
			return wrap(err, fmt.Sprintf("failed to wishlist game %d for user %d", gameID, userID))
		}
		var owned int64
		if err := tx.Model(&models.Owned{}).Where("game_id = ? AND user_id = ?", gameID, userID).Count(&owned).Error; err != nil {
			return fmt.Errorf("failed to check ownership of game %d for user %d: %w", gameID, userID, err)
		}
		if owned > 0 {
			return ErrAlreadyOwned
		}
		return nil
	})
}

// Remove deletes the pair from one collection and reports whether a row was
// actually removed.
func (r *GORMLedgerRepository) Remove(ctx context.Context, collection models.Collection, gameID, userID uint) (bool, error) {
	var model interface{}
	switch collection {
	case models.CollectionOwned:
		model = &models.Owned{}
	case models.CollectionWishlist:
		model = &models.Wishlist{}
	default:
		return false, fmt.Errorf("unknown collection %q", collection)
	}
	res := r.db.WithContext(ctx).Where("game_id = ? AND user_id = ?", gameID, userID).Delete(model)
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove game %d from %s of user %d: %w", gameID, collection, userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
