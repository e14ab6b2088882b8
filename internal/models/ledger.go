package models

// Owned and Wishlist hold (game, user) pairs. A pair may appear in at most
// one of the two tables, and never for the game's creator.
type Owned struct {
	ID     uint `gorm:"primaryKey"`
	GameID uint `gorm:"not null;uniqueIndex:idx_owned_pair"`
	UserID uint `gorm:"not null;uniqueIndex:idx_owned_pair;index:idx_owned_user"`
}

func (Owned) TableName() string { return "owned" }

type Wishlist struct {
	ID     uint `gorm:"primaryKey"`
	GameID uint `gorm:"not null;uniqueIndex:idx_wishlist_pair"`
	UserID uint `gorm:"not null;uniqueIndex:idx_wishlist_pair;index:idx_wishlist_user"`
}

func (Wishlist) TableName() string { return "wishlist" }

// Collection names one of the two ledger tables.
type Collection string

const (
	CollectionOwned    Collection = "owned"
	CollectionWishlist Collection = "wishlist"
)

// Table returns the backing table name. Only the two known collections map
// to a table; anything else yields "".
func (c Collection) Table() string {
	switch c {
	case CollectionOwned:
		return Owned{}.TableName()
	case CollectionWishlist:
		return Wishlist{}.TableName()
	}
	return ""
}

// LedgerState is the logical state of a (game, user) pair.
type LedgerState string

const (
	StateNone       LedgerState = "NONE"
	StateWishlisted LedgerState = "WISHLISTED"
	StateOwned      LedgerState = "OWNED"
)

// LedgerSnapshot captures everything the ledger guards need, read in one
// statement.
type LedgerSnapshot struct {
	CreatorID  uint
	Owned      bool
	Wishlisted bool
}

func (s LedgerSnapshot) State() LedgerState {
	switch {
	case s.Owned:
		return StateOwned
	case s.Wishlisted:
		return StateWishlisted
	}
	return StateNone
}
