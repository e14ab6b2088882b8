package database

import (
	"context"
	"fmt"

	"github.com/LukeA4591/GameTroveAPI/internal/config"
	"github.com/LukeA4591/GameTroveAPI/internal/logging"
	"github.com/LukeA4591/GameTroveAPI/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Open connects to the configured store, applies pool settings and migrates
// the schema.
func Open(cfg *config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.GormLogger(logger, cfg.DBSlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.WithField("driver", cfg.DBDriver).Info("database connection established")
	return db, nil
}

// Migrate creates or updates every table the catalogue uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Genre{},
		&models.Platform{},
		&models.Game{},
		&models.GamePlatform{},
		&models.Owned{},
		&models.Wishlist{},
		&models.Review{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

var (
	defaultGenres = []string{
		"Action", "Adventure", "Role-Playing", "Strategy", "Simulation",
		"Sports", "Puzzle", "Racing", "Fighting", "Platformer",
		"Shooter", "Horror", "Sandbox",
	}
	defaultPlatforms = []string{
		"PC", "PS5", "PS4", "Xbox Series X|S", "Xbox One",
		"Nintendo Switch", "Mobile",
	}
)

// SeedReferenceData inserts the default genres and platforms. Existing rows
// are left alone, so it is safe to run on every start.
func SeedReferenceData(ctx context.Context, db *gorm.DB) error {
	genres := make([]models.Genre, len(defaultGenres))
	for i, name := range defaultGenres {
		genres[i] = models.Genre{Name: name}
	}
	platforms := make([]models.Platform, len(defaultPlatforms))
	for i, name := range defaultPlatforms {
		platforms[i] = models.Platform{Name: name}
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}
		if err := tx.Clauses(onConflict).Create(&genres).Error; err != nil {
			return fmt.Errorf("failed to seed genres: %w", err)
		}
		if err := tx.Clauses(onConflict).Create(&platforms).Error; err != nil {
			return fmt.Errorf("failed to seed platforms: %w", err)
		}
		return nil
	})
}
