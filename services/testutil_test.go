package services

import (
	"testing"
	"time"

	"github.com/SkyeLoft/HTMLBattlepass/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB creates a fresh in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	// A pooled :memory: DSN would give every connection its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.ContentItem{},
		&models.Season{},
		&models.Event{},
		&models.UserProgression{},
		&models.ViewedItem{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedSeason(t *testing.T, db *gorm.DB, name string, current, enabled bool) models.Season {
	t.Helper()
	season := models.Season{
		ID:        uuid.NewString(),
		Name:      name,
		IsCurrent: current,
		IsEnabled: enabled,
		StartDate: time.Now().Add(-24 * time.Hour),
	}
	require.NoError(t, db.Create(&season).Error)
	return season
}

func seedEvent(t *testing.T, db *gorm.DB, name string, enabled bool, start time.Time, end *time.Time) models.Event {
	t.Helper()
	event := models.Event{
		ID:        uuid.NewString(),
		Name:      name,
		IsEnabled: enabled,
		StartDate: start,
		EndDate:   end,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func seedItem(t *testing.T, db *gorm.DB, filename, pool string, requiredLevel int) models.ContentItem {
	t.Helper()
	item := models.ContentItem{
		ID:            uuid.NewString(),
		Filename:      filename,
		Pool:          pool,
		RequiredLevel: requiredLevel,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}
