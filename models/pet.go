// models/pet.go
package models

import (
	"time"

	"fithub/progression"
)

// CompanionType is master data: artwork plus the rule gating adoption.
type CompanionType struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Code            string    `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name            string    `gorm:"not null;size:100" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	ImageEgg        string    `gorm:"size:255" json:"image_egg"`
	ImageChild      string    `gorm:"size:255" json:"image_child"`
	ImageAdult      string    `gorm:"size:255" json:"image_adult"`
	BackgroundImage string    `gorm:"size:255" json:"background_image"`
	UnlockType      string    `gorm:"not null;size:20" json:"unlock_type"` // default, user_level, pet_growth
	UnlockLevel     int       `json:"unlock_level,omitempty"`
	UnlockPetCode   string    `gorm:"size:50" json:"unlock_pet_code,omitempty"`
	IsStarter       bool      `json:"is_starter"`
	IsActive        bool      `gorm:"index" json:"is_active"`
	DisplayOrder    int       `json:"display_order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (c CompanionType) Rule() progression.UnlockRule {
	return progression.UnlockRule{
		CompanionTypeID: c.ID,
		Code:            c.Code,
		Name:            c.Name,
		Type:            c.UnlockType,
		Level:           c.UnlockLevel,
		PetCode:         c.UnlockPetCode,
		Starter:         c.IsStarter,
	}
}

func (c CompanionType) Images() progression.StageImages {
	return progression.StageImages{Egg: c.ImageEgg, Child: c.ImageChild, Adult: c.ImageAdult}
}

// Pet is a companion owned by a user. Level, Stage and MoodScore are caches
// refreshed on read; TotalExp is authoritative.
type Pet struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	CompanionTypeID uint      `gorm:"not null;index" json:"companion_type_id"`
	Name            string    `gorm:"not null;size:50" json:"name"`
	Stage           int       `gorm:"not null" json:"stage"`
	MoodScore       int       `gorm:"not null" json:"mood_score"`
	TotalExp        int64     `gorm:"not null" json:"total_exp"`
	Level           int       `gorm:"not null" json:"level"`
	IsActive        bool      `gorm:"index" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	CompanionType *CompanionType `gorm:"foreignKey:CompanionTypeID" json:"companion_type,omitempty"`
}

// UserUnlock is append-only; the unique pair makes re-evaluation idempotent.
type UserUnlock struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_unlocks_user_type" json:"user_id"`
	CompanionTypeID uint      `gorm:"not null;uniqueIndex:idx_unlocks_user_type" json:"companion_type_id"`
	UnlockedAt      time.Time `json:"unlocked_at"`
}
