package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/LukeA4591/GameTroveAPI/internal/config"
	"github.com/LukeA4591/GameTroveAPI/internal/database"
	"github.com/LukeA4591/GameTroveAPI/internal/logging"
	"github.com/LukeA4591/GameTroveAPI/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory sqlite database on a single
// connection, migrated and seeded with two genres and three platforms.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{
		DBDriver:       "sqlite",
		DatabaseDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
	}, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, db.Create(&[]models.Genre{{ID: 1, Name: "Strategy"}, {ID: 2, Name: "Puzzle"}}).Error)
	require.NoError(t, db.Create(&[]models.Platform{{ID: 1, Name: "PC"}, {ID: 2, Name: "PS5"}, {ID: 3, Name: "Switch"}}).Error)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, first string) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: first,
		LastName:  "Tester",
		Email:     fmt.Sprintf("%s-%s@example.com", first, uuid.NewString()[:8]),
		Password:  "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type gameSpec struct {
	title     string
	creator   uint
	genre     uint
	price     int
	platforms []uint
	created   time.Time
}

func createGame(t *testing.T, db *gorm.DB, in gameSpec) *models.Game {
	t.Helper()
	if in.genre == 0 {
		in.genre = 1
	}
	if in.created.IsZero() {
		in.created = time.Now().UTC()
	}
	game := &models.Game{
		Title:        in.title,
		Description:  in.title + " description",
		CreationDate: in.created,
		CreatorID:    in.creator,
		GenreID:      in.genre,
		Price:        in.price,
	}
	require.NoError(t, db.Create(game).Error)
	for _, pid := range in.platforms {
		require.NoError(t, db.Create(&models.GamePlatform{GameID: game.ID, PlatformID: pid}).Error)
	}
	return game
}

func addReview(t *testing.T, db *gorm.DB, gameID, userID uint, rating int) {
	t.Helper()
	require.NoError(t, db.Create(&models.Review{GameID: gameID, UserID: userID, Rating: rating, Timestamp: time.Now().UTC()}).Error)
}

func ctx() context.Context {
	return context.Background()
}
