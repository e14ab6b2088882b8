package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/LukeA4591/GameTroveAPI/internal/models"
	"github.com/LukeA4591/GameTroveAPI/internal/repositories"

	"github.com/sirupsen/logrus"
)

// LedgerService moves (game, user) pairs between NONE, WISHLISTED and OWNED.
// Guards are evaluated against one snapshot; the storage uniqueness
// constraints settle races between identical concurrent requests.
type LedgerService struct {
	base
	ledger repositories.LedgerRepository
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledger repositories.LedgerRepository, opts ...Option) *LedgerService {
	return &LedgerService{
		base:   newBase(opts),
		ledger: ledger,
	}
}

// AddToWishlist moves the pair from NONE to WISHLISTED.
func (s *LedgerService) AddToWishlist(ctx context.Context, gameID, userID uint) (models.ResultCode, error) {
	code, err := s.addToWishlist(ctx, gameID, userID)
	s.record("add_wishlist", gameID, userID, code, err)
	return code, err
}

func (s *LedgerService) addToWishlist(ctx context.Context, gameID, userID uint) (models.ResultCode, error) {
	snap, code, err := s.snapshot(ctx, gameID, userID)
	if err != nil || code != "" {
		return code, err
	}
	switch {
	case snap.CreatorID == userID:
		return models.ResultGameCreator, nil
	case snap.Owned:
		return models.ResultGameAlreadyOwned, nil
	case snap.Wishlisted:
		return models.ResultGameAlreadyWishlist, nil
	}

	if err := s.ledger.AddWishlist(ctx, gameID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return models.ResultGameAlreadyWishlist, nil
		case errors.Is(err, repositories.ErrAlreadyOwned):
			return models.ResultGameAlreadyOwned, nil
		case errors.Is(err, repositories.ErrNotFound):
			return models.ResultGameDNE, nil
		}
		return "", transient("add to wishlist", err)
	}
	s.publish(EventGameWishlisted, gameID, userID)
	return models.ResultGameAdded, nil
}

// AddToOwned moves the pair from NONE or WISHLISTED to OWNED, dropping the
// wishlist entry in the same transaction.
func (s *LedgerService) AddToOwned(ctx context.Context, gameID, userID uint) (models.ResultCode, error) {
	code, err := s.addToOwned(ctx, gameID, userID)
	s.record("add_owned", gameID, userID, code, err)
	return code, err
}

func (s *LedgerService) addToOwned(ctx context.Context, gameID, userID uint) (models.ResultCode, error) {
	snap, code, err := s.snapshot(ctx, gameID, userID)
	if err != nil || code != "" {
		return code, err
	}
	switch {
	case snap.CreatorID == userID:
		return models.ResultGameCreator, nil
	case snap.Owned:
		return models.ResultGameAlreadyOwned, nil
	}

	if err := s.ledger.AddOwned(ctx, gameID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return models.ResultGameAlreadyOwned, nil
		case errors.Is(err, repositories.ErrNotFound):
			return models.ResultGameDNE, nil
		}
		return "", transient("add to owned", err)
	}
	s.publish(EventGameOwned, gameID, userID)
	return models.ResultGameAdded, nil
}

// Remove moves the pair back to NONE from the given collection.
func (s *LedgerService) Remove(ctx context.Context, collection models.Collection, gameID, userID uint) (models.ResultCode, error) {
	code, err := s.remove(ctx, collection, gameID, userID)
	s.record("remove_"+string(collection), gameID, userID, code, err)
	return code, err
}

func (s *LedgerService) remove(ctx context.Context, collection models.Collection, gameID, userID uint) (models.ResultCode, error) {
	if collection.Table() == "" {
		return "", fmt.Errorf("%w: unknown collection %q", ErrInvalidInput, collection)
	}
	snap, code, err := s.snapshot(ctx, gameID, userID)
	if err != nil || code != "" {
		return code, err
	}

	member := snap.Owned
	event := EventGameUnowned
	if collection == models.CollectionWishlist {
		member = snap.Wishlisted
		event = EventGameUnwishlisted
	}
	if !member {
		return models.ResultGameNot, nil
	}

	removed, err := s.ledger.Remove(ctx, collection, gameID, userID)
	if err != nil {
		return "", transient("remove from "+string(collection), err)
	}
	if !removed {
		return models.ResultGameNot, nil
	}
	s.publish(event, gameID, userID)
	return models.ResultSuccess, nil
}

// State reports the pair's current logical state.
func (s *LedgerService) State(ctx context.Context, gameID, userID uint) (models.LedgerState, error) {
	snap, code, err := s.snapshot(ctx, gameID, userID)
	if err != nil {
		return "", err
	}
	if code == models.ResultGameDNE {
		return "", fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}
	return snap.State(), nil
}

// snapshot returns GAME_DNE as a code rather than an error.
func (s *LedgerService) snapshot(ctx context.Context, gameID, userID uint) (*models.LedgerSnapshot, models.ResultCode, error) {
	snap, err := s.ledger.Snapshot(ctx, gameID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ResultGameDNE, nil
	}
	if err != nil {
		return nil, "", transient("read ledger", err)
	}
	return snap, "", nil
}

func (s *LedgerService) record(op string, gameID, userID uint, code models.ResultCode, err error) {
	entry := s.log.WithFields(logrus.Fields{"op": op, "game_id": gameID, "user_id": userID})
	if err != nil {
		entry.WithError(err).Error("ledger operation failed")
		return
	}
	s.metrics.CountLedger(op, string(code))
	entry.WithField("result", code).Debug("ledger operation")
}
