// models/streak.go
package models

import "time"

// UserStreak is created lazily, one row per (user, streak type).
// Dates are stored as YYYY-MM-DD business days.
type UserStreak struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_streaks_user_type" json:"user_id"`
	StreakType     string    `gorm:"not null;size:20;uniqueIndex:idx_streaks_user_type" json:"streak_type"`
	CurrentStreak  int       `gorm:"not null" json:"current_streak"`
	BestStreak     int       `gorm:"not null" json:"best_streak"`
	LastActiveDate *string   `gorm:"size:10" json:"last_active_date"`
	GraceDaysUsed  int       `gorm:"not null" json:"grace_days_used"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LoginHistory has one row per user per business day on which a login was
// recorded. BonusClaimed flips once the login bonus has been paid.
type LoginHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_logins_user_date" json:"user_id"`
	LoginDate    string    `gorm:"not null;size:10;uniqueIndex:idx_logins_user_date" json:"login_date"`
	BonusClaimed bool      `gorm:"not null" json:"bonus_claimed"`
	ExpEarned    int64     `gorm:"not null" json:"exp_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

// DailyRewardClaim records one claim of the 14 day reward calendar.
type DailyRewardClaim struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rewards_user_date" json:"user_id"`
	ClaimDate string    `gorm:"not null;size:10;uniqueIndex:idx_rewards_user_date" json:"claim_date"`
	RewardDay int       `gorm:"not null" json:"reward_day"`
	ExpEarned int64     `gorm:"not null" json:"exp_earned"`
	CreatedAt time.Time `json:"created_at"`
}
