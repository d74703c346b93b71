package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProgression tracks the per-user economy state: spendable tokens,
// battle pass experience, and the viewed-item set. Mutated only through
// FeedService (draw / unlock / experience); one row per external user.
type UserProgression struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // from the gateway's profile service

	Tokens           int `json:"tokens" gorm:"default:0"`
	ExperiencePoints int `json:"experience_points" gorm:"default:0"` // 0–99 between level-ups
	BattlePassLevel  int `json:"battle_pass_level" gorm:"default:0"`

	Timestamps
}

// ViewedItem is one element of a user's viewed set. The unique composite
// index gives set semantics at the schema level: inserting a duplicate is a
// conflict, not a second membership. Rows are never deleted — the set only
// grows.
type ViewedItem struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"not null;uniqueIndex:idx_viewed_user_item" json:"external_user_id"`
	ContentItemID  string    `gorm:"not null;uniqueIndex:idx_viewed_user_item" json:"content_item_id"`
	ViewedAt       time.Time `gorm:"autoCreateTime" json:"viewed_at"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
