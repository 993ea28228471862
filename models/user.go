// models/user.go
package models

import (
	"time"
)

type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"uniqueIndex;not null;size:50" json:"username"`
	Email       *string    `gorm:"uniqueIndex" json:"email,omitempty"`
	Password    string     `gorm:"not null" json:"-"`
	DisplayName string     `gorm:"size:100" json:"display_name"`
	IsAdmin     bool       `json:"is_admin"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`

	Account  *ProgressionAccount `gorm:"foreignKey:UserID" json:"account,omitempty"`
	Settings *UserSettings       `gorm:"foreignKey:UserID" json:"settings,omitempty"`
}

// ProgressionAccount is the user's EXP ledger. Level is a cache of
// progression.LevelFromExp(TotalExp) and is rewritten with every change.
type ProgressionAccount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalExp  int64     `gorm:"not null" json:"total_exp"`
	Level     int       `gorm:"not null" json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserSettings struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	GraceDaysAllowed int       `gorm:"not null" json:"grace_days_allowed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
