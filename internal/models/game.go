package models

import "time"

// Game is a catalogue listing. Title is unique across all games and
// CreationDate is set once on insert.
type Game struct {
	ID            uint      `gorm:"primaryKey"`
	Title         string    `gorm:"size:128;uniqueIndex:idx_game_title;not null"`
	Description   string    `gorm:"size:1024;not null;default:''"`
	CreationDate  time.Time `gorm:"not null;index:idx_game_creation_date"`
	ImageFilename *string   `gorm:"size:64"`
	CreatorID     uint      `gorm:"not null;index:idx_game_creator"`
	GenreID       uint      `gorm:"not null;index:idx_game_genre"`
	Price         int       `gorm:"not null;check:chk_game_price,price >= 0"`
}

func (Game) TableName() string { return "game" }

// GamePlatform is the junction row between a game and a platform.
type GamePlatform struct {
	ID         uint `gorm:"primaryKey"`
	GameID     uint `gorm:"not null;uniqueIndex:idx_game_platforms_pair"`
	PlatformID uint `gorm:"not null;uniqueIndex:idx_game_platforms_pair;index:idx_game_platforms_platform"`
}

func (GamePlatform) TableName() string { return "game_platforms" }

// Genre and Platform are static reference tables.
type Genre struct {
	ID   uint   `json:"genreId" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:64;uniqueIndex:idx_genre_name;not null"`
}

func (Genre) TableName() string { return "genre" }

type Platform struct {
	ID   uint   `json:"platformId" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:64;uniqueIndex:idx_platform_name;not null"`
}

func (Platform) TableName() string { return "platform" }

// GameView is the read shape shared by search and single-game lookups.
// Description and the owner/wishlist counts are only set on the detail view.
type GameView struct {
	GameID            uint      `json:"gameId"`
	Title             string    `json:"title"`
	Description       *string   `json:"description,omitempty"`
	GenreID           uint      `json:"genreId"`
	CreatorID         uint      `json:"creatorId"`
	CreatorFirstName  string    `json:"creatorFirstName"`
	CreatorLastName   string    `json:"creatorLastName"`
	Price             int       `json:"price"`
	Rating            float64   `json:"rating"`
	PlatformIDs       []int     `json:"platformIds"`
	CreationDate      time.Time `json:"creationDate"`
	NumberOfOwners    *int64    `json:"numberOfOwners,omitempty"`
	NumberOfWishlists *int64    `json:"numberOfWishlists,omitempty"`
}

// SearchResult is one page of games plus the size of the whole filtered set.
type SearchResult struct {
	Games []GameView `json:"games"`
	Count int        `json:"count"`
}
