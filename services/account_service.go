package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fithub/common"
	"fithub/models"
	"fithub/progression"
)

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// AccountChange describes one EXP movement on a ProgressionAccount.
type AccountChange struct {
	Delta         int64
	TotalExp      int64
	OldLevel      int
	Level         int
	LeveledUp     bool
	LevelProgress float64
}

// Summary is the read model behind GET /api/progression.
type Summary struct {
	TotalExp           int64   `json:"total_exp"`
	Level              int     `json:"level"`
	ExpToNextLevel     int64   `json:"exp_to_next_level"`
	RequiredExpForNext int64   `json:"required_exp_for_next"`
	LevelProgress      float64 `json:"level_progress"`
}

func summarize(totalExp int64) Summary {
	level := progression.LevelFromExp(totalExp)
	return Summary{
		TotalExp:           totalExp,
		Level:              level,
		ExpToNextLevel:     progression.ExpRemaining(totalExp, level),
		RequiredExpForNext: progression.RequiredExp(level + 1),
		LevelProgress:      progression.LevelProgress(totalExp, level),
	}
}

// Summary returns the user's current progression.
func (s *AccountService) Summary(userID uint) (Summary, error) {
	var acc models.ProgressionAccount
	err := s.db.Where("user_id = ?", userID).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := ensureUserExists(s.db, userID); err != nil {
			return Summary{}, err
		}
		return summarize(0), nil
	}
	if err != nil {
		return Summary{}, fmt.Errorf("load account: %w", err)
	}
	return summarize(acc.TotalExp), nil
}

// lockAccount takes the row lock that anchors every per-user transaction,
// creating the account for users registered before it existed.
func lockAccount(tx *gorm.DB, userID uint) (*models.ProgressionAccount, error) {
	var acc models.ProgressionAccount
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&acc).Error
	if err == nil {
		return &acc, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lock account: %w", err)
	}

	if err := ensureUserExists(tx, userID); err != nil {
		return nil, err
	}
	acc = models.ProgressionAccount{UserID: userID, TotalExp: 0, Level: 1}
	if err := tx.Create(&acc).Error; err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &acc, nil
}

// applyToAccount moves EXP on a locked account, floors it at zero and
// rewrites the cached level.
func applyToAccount(tx *gorm.DB, acc *models.ProgressionAccount, delta int64) (AccountChange, error) {
	ch := AccountChange{Delta: delta, OldLevel: progression.LevelFromExp(acc.TotalExp)}
	acc.TotalExp = progression.ApplyDelta(acc.TotalExp, delta)
	acc.Level = progression.LevelFromExp(acc.TotalExp)

	if err := tx.Model(acc).Updates(map[string]any{
		"total_exp":  acc.TotalExp,
		"level":      acc.Level,
		"updated_at": time.Now().UTC(),
	}).Error; err != nil {
		return ch, fmt.Errorf("update account: %w", err)
	}

	ch.TotalExp = acc.TotalExp
	ch.Level = acc.Level
	ch.LeveledUp = ch.Level > ch.OldLevel
	ch.LevelProgress = progression.LevelProgress(acc.TotalExp, acc.Level)
	return ch, nil
}

func ensureUserExists(tx *gorm.DB, userID uint) error {
	var n int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if n == 0 {
		return common.NotFound("user")
	}
	return nil
}
