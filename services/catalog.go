package services

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/SkyeLoft/HTMLBattlepass/models"
	"github.com/SkyeLoft/HTMLBattlepass/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService keeps the ContentItem table consistent with the image
// store: every "<pool>/<filename>" object gets exactly one catalog row.
// The sweep is an explicit, schedulable operation — eligibility reads assume
// the catalog is already consistent and never touch storage.
type CatalogService struct {
	DB *gorm.DB

	// ListKeys supplies the storage listing. Defaults to the R2 bucket
	// walk; tests swap in a fixed slice.
	ListKeys func(ctx context.Context) ([]string, error)
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db, ListKeys: utils.ListImageKeys}
}

// Sync sweeps the store and inserts catalog rows for assets that have none.
// Existing rows are never touched, so admin-edited required levels survive
// re-syncs. Companion-pool items get positional tiers (1-based by sorted
// filename); rotation-pool items are unrestricted.
func (s *CatalogService) Sync(ctx context.Context) error {
	keys, err := s.ListKeys(ctx)
	if err != nil {
		return err
	}

	byPool := make(map[string][]string)
	for _, key := range keys {
		pool, filename, ok := strings.Cut(key, "/")
		if !ok || pool == "" || filename == "" || strings.Contains(filename, "/") {
			continue // only one level of nesting maps to the catalog
		}
		byPool[pool] = append(byPool[pool], filename)
	}

	var inserted int
	for pool, filenames := range byPool {
		sort.Strings(filenames)
		companion := strings.HasSuffix(pool, models.CompanionSuffix)

		for i, filename := range filenames {
			requiredLevel := 0
			if companion {
				requiredLevel = i + 1 // battle pass tier by position
			}
			item := models.ContentItem{
				ID:            uuid.NewString(),
				Filename:      filename,
				Pool:          pool,
				RequiredLevel: requiredLevel,
			}
			res := s.DB.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "filename"}, {Name: "pool"}},
				DoNothing: true,
			}).Create(&item)
			if res.Error != nil {
				return res.Error
			}
			inserted += int(res.RowsAffected)
		}
	}

	if inserted > 0 {
		log.Printf("📇 Catalog sync: %d new item(s) from %d key(s)", inserted, len(keys))
	}
	return nil
}

// UpsertItem registers a single asset right after an admin upload, so the
// item is drawable without waiting for the next sweep. An existing row only
// has its required level updated — the one mutable field.
func (s *CatalogService) UpsertItem(filename, pool string, requiredLevel int) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("filename = ? AND pool = ?", filename, pool).First(&item).Error
		if err == gorm.ErrRecordNotFound {
			item = models.ContentItem{
				ID:            uuid.NewString(),
				Filename:      filename,
				Pool:          pool,
				RequiredLevel: requiredLevel,
			}
			return tx.Create(&item).Error
		}
		if err != nil {
			return err
		}
		item.RequiredLevel = requiredLevel
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetRequiredLevel edits the unlock-level requirement of an item.
func (s *CatalogService) SetRequiredLevel(itemID string, level int) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			return err
		}
		item.RequiredLevel = level
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns the full catalog, grouped for the admin view.
func (s *CatalogService) ListItems() ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := s.DB.Order("pool ASC, filename ASC").Find(&items).Error
	return items, err
}
