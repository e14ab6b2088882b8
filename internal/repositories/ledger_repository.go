package repositories

import (
	"context"

	"github.com/LukeA4591/GameTroveAPI/internal/models"
)

// LedgerRepository stores the owned/wishlist state of (game, user) pairs.
type LedgerRepository interface {
	Snapshot(ctx context.Context, gameID, userID uint) (*models.LedgerSnapshot, error)
	AddOwned(ctx context.Context, gameID, userID uint) error
	AddWishlist(ctx context.Context, gameID, userID uint) error
	Remove(ctx context.Context, collection models.Collection, gameID, userID uint) (bool, error)
}
