package services

import (
	"log"
	"time"

	"github.com/SkyeLoft/HTMLBattlepass/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultSeasonName is the season the resolver self-heals onto when no
// season has ever been marked current.
const DefaultSeasonName = "season1"

type EligibilityService struct {
	DB *gorm.DB
}

func NewEligibilityService(db *gorm.DB) *EligibilityService {
	return &EligibilityService{DB: db}
}

// ResolveEligible returns every catalog item currently in random rotation:
// items whose pool is an enabled season or a date-active event. Companion
// (battle pass) pools never rotate. An empty result is a normal outcome,
// not an error — the caller shows an empty state.
func (s *EligibilityService) ResolveEligible(now time.Time) ([]models.ContentItem, error) {
	if _, err := s.EnsureCurrentSeason(now); err != nil {
		return nil, err
	}

	var seasons []models.Season
	if err := s.DB.Where("is_enabled = ?", true).Find(&seasons).Error; err != nil {
		return nil, err
	}
	var events []models.Event
	if err := s.DB.Find(&events).Error; err != nil {
		return nil, err
	}

	pools := make([]string, 0, len(seasons)+len(events))
	for _, season := range seasons {
		pools = append(pools, season.Name)
	}
	for _, event := range events {
		if event.Active(now) {
			pools = append(pools, event.Name)
		}
	}
	if len(pools) == 0 {
		return nil, nil
	}

	var items []models.ContentItem
	if err := s.DB.Where("pool IN ?", pools).Find(&items).Error; err != nil {
		return nil, err
	}

	// Companion pools are excluded even if a pool name ever carries the
	// suffix directly.
	eligible := items[:0]
	for _, item := range items {
		if !item.IsCompanion() {
			eligible = append(eligible, item)
		}
	}
	return eligible, nil
}

// EnsureCurrentSeason is the idempotent bootstrap: if no season is current,
// promote the default season — creating it first if it does not exist.
// "No current season" is not a valid steady state for the rest of the engine.
func (s *EligibilityService) EnsureCurrentSeason(now time.Time) (*models.Season, error) {
	var current models.Season
	err := s.DB.Where("is_current = ?", true).First(&current).Error
	if err == nil {
		return &current, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Re-check under the transaction: a SetCurrentSeason may have
		// committed since the read above.
		err := tx.Where("is_current = ?", true).First(&current).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		// Unscoped lookup: a soft-deleted default season still holds the
		// unique name and would collide with a fresh insert.
		var season models.Season
		err = tx.Unscoped().Where("name = ?", DefaultSeasonName).First(&season).Error
		if err == gorm.ErrRecordNotFound {
			season = models.Season{
				ID:        uuid.NewString(),
				Name:      DefaultSeasonName,
				IsCurrent: true,
				IsEnabled: true,
				StartDate: now,
			}
			if createErr := tx.Create(&season).Error; createErr != nil {
				return createErr
			}
			log.Printf("🌱 Bootstrapped default season %q as current", DefaultSeasonName)
			current = season
			return nil
		}
		if err != nil {
			return err
		}

		season.DeletedAt = gorm.DeletedAt{}
		season.IsCurrent = true
		season.IsEnabled = true
		if saveErr := tx.Unscoped().Save(&season).Error; saveErr != nil {
			return saveErr
		}
		log.Printf("🌱 Promoted existing season %q to current", season.Name)
		current = season
		return nil
	})
	if err != nil {
		// A concurrent bootstrap may have won the unique-name insert.
		if readErr := s.DB.Where("is_current = ?", true).First(&current).Error; readErr == nil {
			return &current, nil
		}
		return nil, err
	}
	return &current, nil
}
