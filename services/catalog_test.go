package services

import (
	"context"
	"testing"

	"github.com/SkyeLoft/HTMLBattlepass/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogService(db *gorm.DB, keys []string) *CatalogService {
	svc := NewCatalogService(db)
	svc.ListKeys = func(ctx context.Context) ([]string, error) {
		return keys, nil
	}
	return svc
}

func TestSync_InsertsMissingRows(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db, []string{
		"season1/a.png",
		"season1/b.jpg",
		"halloween/pumpkin.gif",
	})

	require.NoError(t, svc.Sync(context.Background()))

	items, err := svc.ListItems()
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, 0, item.RequiredLevel, "rotation items are unrestricted")
	}
}

func TestSync_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db, []string{"season1/a.png", "season1/b.png"})

	require.NoError(t, svc.Sync(context.Background()))
	require.NoError(t, svc.Sync(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.ContentItem{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestSync_CompanionTiering(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db, []string{
		// Deliberately out of order: tiers follow sorted filenames.
		"season1_battlepass/c.png",
		"season1_battlepass/a.png",
		"season1_battlepass/b.png",
	})

	require.NoError(t, svc.Sync(context.Background()))

	var items []models.ContentItem
	require.NoError(t, db.Where("pool = ?", "season1_battlepass").
		Order("filename ASC").Find(&items).Error)
	require.Len(t, items, 3)
	assert.Equal(t, 1, items[0].RequiredLevel)
	assert.Equal(t, 2, items[1].RequiredLevel)
	assert.Equal(t, 3, items[2].RequiredLevel)
}

func TestSync_PreservesAdminEdits(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db, []string{"season1/a.png"})

	require.NoError(t, svc.Sync(context.Background()))

	var item models.ContentItem
	require.NoError(t, db.Where("filename = ? AND pool = ?", "a.png", "season1").First(&item).Error)
	_, err := svc.SetRequiredLevel(item.ID, 7)
	require.NoError(t, err)

	// A later sweep must not reset the edited level.
	require.NoError(t, svc.Sync(context.Background()))
	require.NoError(t, db.Where("id = ?", item.ID).First(&item).Error)
	assert.Equal(t, 7, item.RequiredLevel)
}

func TestSync_SkipsNonCatalogKeys(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db, []string{
		"season1/a.png",
		"loose.png",            // no pool prefix
		"season1/nested/b.png", // too deep
	})

	require.NoError(t, svc.Sync(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.ContentItem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	created, err := svc.UpsertItem("a.png", "season1", 0)
	require.NoError(t, err)

	// Same (filename, pool) updates the level instead of duplicating.
	updated, err := svc.UpsertItem("a.png", "season1", 4)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 4, updated.RequiredLevel)

	var count int64
	require.NoError(t, db.Model(&models.ContentItem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSetRequiredLevel_Unknown(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	_, err := svc.SetRequiredLevel("no-such-item", 3)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
