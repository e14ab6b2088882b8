package models

import "time"

// Review is a user's rating of a game. One per (game, user).
type Review struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    uint      `gorm:"not null;uniqueIndex:idx_game_review_pair"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_game_review_pair;index:idx_game_review_user"`
	Rating    int       `gorm:"not null"`
	Review    *string   `gorm:"size:512"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
}

func (Review) TableName() string { return "game_review" }

type ReviewView struct {
	ReviewerID        uint      `json:"reviewerId"`
	ReviewerFirstName string    `json:"reviewerFirstName"`
	ReviewerLastName  string    `json:"reviewerLastName"`
	Rating            int       `json:"rating"`
	Review            *string   `json:"review"`
	Timestamp         time.Time `json:"timestamp"`
}
