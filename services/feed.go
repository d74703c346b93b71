package services

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/SkyeLoft/HTMLBattlepass/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultUnlockCost is the token price of a manual unlock when UNLOCK_COST
// is not configured. Earlier revisions of the product shipped both 10 and 1,
// so the price is config, never a hard-coded constant in the rules below.
const DefaultUnlockCost = 10

// XPPerLevel is the experience required for one battle pass level.
const XPPerLevel = 100

// FeedService implements the user-facing economy: the random draw with its
// first-view token reward, the token-gated manual unlock, and battle pass
// experience.
type FeedService struct {
	DB          *gorm.DB
	Eligibility *EligibilityService
	UnlockCost  int
}

func NewFeedService(db *gorm.DB, eligibility *EligibilityService, unlockCost int) *FeedService {
	return &FeedService{DB: db, Eligibility: eligibility, UnlockCost: unlockCost}
}

// EnsureProgression ensures a UserProgression row exists (idempotent).
func (s *FeedService) EnsureProgression(externalUserID string) (*models.UserProgression, error) {
	return ensureProgression(s.DB, externalUserID)
}

func ensureProgression(db *gorm.DB, externalUserID string) (*models.UserProgression, error) {
	var prog models.UserProgression
	err := db.Where("external_user_id = ?", externalUserID).First(&prog).Error
	if err == gorm.ErrRecordNotFound {
		prog = models.UserProgression{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}},
			DoNothing: true,
		}).Create(&prog).Error; err != nil {
			return nil, err
		}
		// Re-read in case a concurrent request won the insert.
		if err := db.Where("external_user_id = ?", externalUserID).First(&prog).Error; err != nil {
			return nil, err
		}
		return &prog, nil
	}
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

// Draw picks one item uniformly at random from the current eligible set and
// marks it viewed for the user. The first time an item enters the user's
// viewed set it pays out one token; re-draws are allowed and pay nothing.
// A nil item means nothing is eligible right now — that is a normal state.
func (s *FeedService) Draw(externalUserID string) (*models.ContentItem, bool, error) {
	eligible, err := s.Eligibility.ResolveEligible(time.Now())
	if err != nil {
		return nil, false, err
	}
	if len(eligible) == 0 {
		return nil, false, nil
	}

	drawn := eligible[rand.IntN(len(eligible))]

	awarded := false
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := ensureProgression(tx, externalUserID); err != nil {
			return err
		}

		// The unique (user, item) index makes the insert the first-view
		// check: a conflict means the item was already in the viewed set.
		viewed := models.ViewedItem{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			ContentItemID:  drawn.ID,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "content_item_id"}},
			DoNothing: true,
		}).Create(&viewed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // already viewed, no reward
		}

		awarded = true
		return tx.Model(&models.UserProgression{}).
			Where("external_user_id = ?", externalUserID).
			Update("tokens", gorm.Expr("tokens + ?", 1)).Error
	})
	if err != nil {
		return nil, false, err
	}

	if awarded {
		fmt.Printf("🎁 First view: %s → item %s (+1 token)\n", externalUserID, drawn.ID)
	}
	return &drawn, awarded, nil
}

// Unlock spends the configured cost to force-mark an item as viewed without
// drawing it. The spend happens even when the item was already viewed; the
// unlock path never pays tokens out. ErrInsufficientTokens is returned with
// no mutation when the user cannot afford it.
func (s *FeedService) Unlock(externalUserID, itemID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.ContentItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			return err // unknown item → gorm.ErrRecordNotFound, nothing spent
		}

		if _, err := ensureProgression(tx, externalUserID); err != nil {
			return err
		}

		// Guarded decrement: the WHERE clause is the affordability check,
		// so the balance can never go negative under concurrent unlocks.
		res := tx.Model(&models.UserProgression{}).
			Where("external_user_id = ? AND tokens >= ?", externalUserID, s.UnlockCost).
			Update("tokens", gorm.Expr("tokens - ?", s.UnlockCost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientTokens
		}

		viewed := models.ViewedItem{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			ContentItemID:  item.ID,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "content_item_id"}},
			DoNothing: true,
		}).Create(&viewed).Error
	})
}

// GainExperience adds battle pass XP and applies level rollovers. The loop
// keeps the remainder, so arbitrary amounts stay correct (95 XP + 10 →
// level+1 with 5 XP carried over).
func (s *FeedService) GainExperience(externalUserID string, amount int) (*models.UserProgression, error) {
	var updated *models.UserProgression
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		prog, err := ensureProgression(tx, externalUserID)
		if err != nil {
			return err
		}

		prog.ExperiencePoints += amount
		for prog.ExperiencePoints >= XPPerLevel {
			prog.BattlePassLevel++
			prog.ExperiencePoints -= XPPerLevel
		}

		if err := tx.Save(prog).Error; err != nil {
			return err
		}
		updated = prog
		return nil
	})
	if err != nil {
		return nil, err
	}
	fmt.Printf("🎮 XP gained: %s → XP=%d, Lvl=%d\n",
		externalUserID, updated.ExperiencePoints, updated.BattlePassLevel)
	return updated, nil
}

// ListViewed returns the user's collection in the order items were first
// viewed or unlocked.
func (s *FeedService) ListViewed(externalUserID string) ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := s.DB.Model(&models.ContentItem{}).
		Joins("JOIN viewed_items ON viewed_items.content_item_id = content_items.id").
		Where("viewed_items.external_user_id = ?", externalUserID).
		Order("viewed_items.viewed_at ASC").
		Find(&items).Error
	return items, err
}

// CompanionItem is a battle pass tier with the viewer's lock status.
type CompanionItem struct {
	models.ContentItem
	Unlocked bool `json:"unlocked"`
	Viewed   bool `json:"viewed"`
}

// CompanionTrack lists the current season's battle pass pool in tier order,
// flagging each item the user has reached (by level) or already holds.
func (s *FeedService) CompanionTrack(externalUserID string) ([]CompanionItem, error) {
	season, err := s.Eligibility.EnsureCurrentSeason(time.Now())
	if err != nil {
		return nil, err
	}

	var items []models.ContentItem
	if err := s.DB.Where("pool = ?", models.CompanionPool(season.Name)).
		Order("required_level ASC, filename ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	prog, err := s.EnsureProgression(externalUserID)
	if err != nil {
		return nil, err
	}

	var viewedIDs []string
	if err := s.DB.Model(&models.ViewedItem{}).
		Where("external_user_id = ?", externalUserID).
		Pluck("content_item_id", &viewedIDs).Error; err != nil {
		return nil, err
	}
	viewed := make(map[string]bool, len(viewedIDs))
	for _, id := range viewedIDs {
		viewed[id] = true
	}

	track := make([]CompanionItem, len(items))
	for i, item := range items {
		track[i] = CompanionItem{
			ContentItem: item,
			Unlocked:    prog.BattlePassLevel >= item.RequiredLevel,
			Viewed:      viewed[item.ID],
		}
	}
	return track, nil
}
