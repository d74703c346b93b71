package models

import "time"

// Season is a named content pool with an on/off switch and an exclusive
// "current" flag. At most one season is current at any time, and the current
// season is always enabled — LifecycleService enforces both.
type Season struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string     `json:"name" gorm:"uniqueIndex;not null"`
	IsCurrent bool       `json:"is_current" gorm:"default:false;index"`
	IsEnabled bool       `json:"is_enabled" gorm:"default:true"`
	StartDate time.Time  `json:"start_date" gorm:"not null"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	Timestamps
}

// Event is a time-boxed content pool. Unlike seasons there is no exclusivity:
// any number of events may be active at once.
type Event struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string     `json:"name" gorm:"uniqueIndex;not null"`
	IsEnabled bool       `json:"is_enabled" gorm:"default:true"`
	StartDate time.Time  `json:"start_date" gorm:"not null"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	Timestamps
}

// Active is the derived liveness of an event: enabled and inside its date
// window. It is never stored.
func (e *Event) Active(now time.Time) bool {
	if !e.IsEnabled || now.Before(e.StartDate) {
		return false
	}
	return e.EndDate == nil || !now.After(*e.EndDate)
}
