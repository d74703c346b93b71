package services

import (
	"context"
	"log"
	"time"

	"github.com/SkyeLoft/HTMLBattlepass/models"
	"github.com/SkyeLoft/HTMLBattlepass/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// LifecycleService runs the season/event state machine: current-season
// exclusivity, enable toggles, and the deletion guards.
type LifecycleService struct {
	DB *gorm.DB

	// ProvisionPool creates the storage prefix for a new pool. Defaults to
	// the R2 marker upload; tests swap in a stub.
	ProvisionPool func(ctx context.Context, pool string) error
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{
		DB:            db,
		ProvisionPool: utils.ProvisionPoolPrefix,
	}
}

// PoolName normalizes an admin-supplied season/event name. Pool names double
// as storage prefixes and catalog keys, so they must be slug-safe.
func PoolName(name string) string {
	return slug.Make(name)
}

// CreateSeason inserts a new enabled, non-current season and provisions its
// empty companion (battle pass) pool alongside it.
func (s *LifecycleService) CreateSeason(ctx context.Context, name string, start time.Time, end *time.Time) (*models.Season, error) {
	season := models.Season{
		ID:        uuid.NewString(),
		Name:      PoolName(name),
		IsEnabled: true,
		IsCurrent: false,
		StartDate: start,
		EndDate:   end,
	}
	if err := s.DB.Create(&season).Error; err != nil {
		return nil, err
	}

	if s.ProvisionPool != nil {
		if err := s.ProvisionPool(ctx, models.CompanionPool(season.Name)); err != nil {
			// The season row stands; the sweep will pick the pool up once
			// assets land. Storage hiccups here are not fatal.
			log.Printf("⚠️ Failed to provision companion pool for %q: %v", season.Name, err)
		}
	}

	log.Printf("✅ Season created: %s", season.Name)
	return &season, nil
}

// SetCurrentSeason makes the named season the single current one. The
// clear-then-set runs in one transaction, so a concurrent resolver sees
// either the old current season or the new one — never zero or two.
func (s *LifecycleService) SetCurrentSeason(name string) (*models.Season, error) {
	var season models.Season
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&season).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Season{}).
			Where("is_current = ? AND id <> ?", true, season.ID).
			Update("is_current", false).Error; err != nil {
			return err
		}
		season.IsCurrent = true
		season.IsEnabled = true // current implies enabled
		return tx.Save(&season).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("👑 Current season is now: %s", season.Name)
	return &season, nil
}

// ToggleSeasonEnabled flips a season's enabled flag. Disabling the current
// season would break the exclusivity invariant, so it is rejected outright
// rather than auto-demoting.
func (s *LifecycleService) ToggleSeasonEnabled(name string) (*models.Season, error) {
	var season models.Season
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&season).Error; err != nil {
			return err
		}
		if season.IsCurrent && season.IsEnabled {
			return ErrSeasonIsCurrent
		}
		season.IsEnabled = !season.IsEnabled
		return tx.Save(&season).Error
	})
	if err != nil {
		return nil, err
	}
	return &season, nil
}

// DeleteSeason removes a non-current season. Its catalog items are retained
// as orphans: still queryable, no longer eligible.
func (s *LifecycleService) DeleteSeason(name string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var season models.Season
		if err := tx.Where("name = ?", name).First(&season).Error; err != nil {
			return err
		}
		if season.IsCurrent {
			return ErrSeasonIsCurrent
		}
		return tx.Delete(&season).Error
	})
}

// CreateEvent inserts a new enabled event. Activity is derived from the date
// window at resolve time, never stored.
func (s *LifecycleService) CreateEvent(name string, start time.Time, end *time.Time) (*models.Event, error) {
	event := models.Event{
		ID:        uuid.NewString(),
		Name:      PoolName(name),
		IsEnabled: true,
		StartDate: start,
		EndDate:   end,
	}
	if err := s.DB.Create(&event).Error; err != nil {
		return nil, err
	}
	log.Printf("✅ Event created: %s", event.Name)
	return &event, nil
}

// ToggleEventEnabled flips an event's enabled flag. No exclusivity rules.
func (s *LifecycleService) ToggleEventEnabled(name string) (*models.Event, error) {
	var event models.Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&event).Error; err != nil {
			return err
		}
		event.IsEnabled = !event.IsEnabled
		return tx.Save(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes an event, retaining its catalog items as orphans.
func (s *LifecycleService) DeleteEvent(name string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("name = ?", name).First(&event).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
}

// ListSeasons returns all seasons, current first.
func (s *LifecycleService) ListSeasons() ([]models.Season, error) {
	var seasons []models.Season
	err := s.DB.Order("is_current DESC, start_date ASC").Find(&seasons).Error
	return seasons, err
}

// ListEvents returns all events by start date.
func (s *LifecycleService) ListEvents() ([]models.Event, error) {
	var events []models.Event
	err := s.DB.Order("start_date ASC").Find(&events).Error
	return events, err
}
