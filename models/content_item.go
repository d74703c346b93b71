package models

import "strings"

// CompanionSuffix marks the bonus-track pool that shadows every season
// (e.g. "season2" → "season2_battlepass"). Companion items never enter
// the random rotation.
const CompanionSuffix = "_battlepass"

// ContentItem is one discoverable image in the catalog. A row exists for
// every asset in the store; rows are never deleted automatically, even when
// their pool (season/event) is removed — orphaned items simply stop
// resolving as eligible.
type ContentItem struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid"`
	Filename string `json:"filename" gorm:"not null;uniqueIndex:idx_items_filename_pool"`
	Pool     string `json:"pool" gorm:"not null;uniqueIndex:idx_items_filename_pool;index"`

	// RequiredLevel gates the companion (battle pass) track: 0 = unrestricted.
	// The only field an admin may edit after creation.
	RequiredLevel int `json:"required_level" gorm:"default:0"`

	Timestamps
}

// IsCompanion reports whether the item belongs to a bonus-track pool.
func (i *ContentItem) IsCompanion() bool {
	return strings.HasSuffix(i.Pool, CompanionSuffix)
}

// CompanionPool returns the bonus-track pool name for a season/event pool.
func CompanionPool(pool string) string {
	return pool + CompanionSuffix
}
