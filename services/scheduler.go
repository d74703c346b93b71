// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/SkyeLoft/HTMLBattlepass/models"

	"github.com/go-co-op/gocron/v2"
)

// StartExpiryScheduler periodically disables seasons whose end date has
// passed, taking them out of rotation. The current season is never touched —
// demoting it is an explicit admin action.
func (s *LifecycleService) StartExpiryScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var seasons []models.Season
			now := time.Now()
			err := s.DB.Where("is_enabled = ? AND is_current = ? AND end_date IS NOT NULL AND end_date < ?",
				true, false, now).
				Find(&seasons).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, season := range seasons {
				season.IsEnabled = false
				if err := s.DB.Save(&season).Error; err != nil {
					log.Printf("[Scheduler] Failed to expire season %s: %v", season.Name, err)
				} else {
					log.Printf("✅ Auto-expired season: %s", season.Name)
				}
			}
		}),
	)
}
