// models/event.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Progression event types.
const (
	EventExpCredited       = "exp_credited"
	EventExpDebited        = "exp_debited"
	EventLevelUp           = "level_up"
	EventPetMatured        = "pet_matured"
	EventCompanionUnlocked = "companion_unlocked"
	EventStreakUpdated     = "streak_updated"
)

// ProgressionEvent is the persisted history behind the live event feed.
type ProgressionEvent struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	UserID     uint           `gorm:"not null;index:idx_events_user_time,priority:1" json:"user_id"`
	Type       string         `gorm:"not null;size:40;index" json:"type"`
	Payload    datatypes.JSON `json:"payload"`
	OccurredAt time.Time      `gorm:"not null;index:idx_events_user_time,priority:2" json:"occurred_at"`
}
