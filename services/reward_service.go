package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fithub/models"
	"fithub/progression"
)

type RewardService struct {
	db       *gorm.DB
	locks    *UserLocker
	calendar progression.Calendar
	streaks  *StreakService
	fx       *creditEffects
}

func NewRewardService(db *gorm.DB, locks *UserLocker, cal progression.Calendar, streaks *StreakService, fx *creditEffects) *RewardService {
	return &RewardService{db: db, locks: locks, calendar: cal, streaks: streaks, fx: fx}
}

// CreditResult is returned by every claim endpoint.
type CreditResult struct {
	AlreadyClaimed bool                `json:"already_claimed"`
	ExpEarned      int64               `json:"exp_earned"`
	TotalExp       int64               `json:"total_exp"`
	Level          int                 `json:"level"`
	NewLevel       *int                `json:"new_level,omitempty"`
	LevelProgress  float64             `json:"level_progress"`
	PetMatured     bool                `json:"pet_matured,omitempty"`
	Unlocked       []UnlockedCompanion `json:"unlocked,omitempty"`
}

// LoginBonusResult adds the login streak to CreditResult.
type LoginBonusResult struct {
	CreditResult
	LoginStreak int `json:"login_streak"`
}

// DailyRewardResult adds the claimed calendar day to CreditResult.
type DailyRewardResult struct {
	CreditResult
	RewardDay   int   `json:"reward_day"`
	BaseExp     int64 `json:"base_exp"`
	IsBigReward bool  `json:"is_big_reward"`
}

// RewardDay is one slot of the 14 day calendar.
type RewardDay struct {
	Day         int    `json:"day"`
	Exp         int64  `json:"exp"`
	IsBigReward bool   `json:"is_big_reward"`
	Claimed     bool   `json:"claimed"`
	ClaimedDate string `json:"claimed_date,omitempty"`
}

// DailyStatus backs GET /api/daily-rewards.
type DailyStatus struct {
	CurrentDay   int         `json:"current_day"`
	TodayClaimed bool        `json:"today_claimed"`
	Days         []RewardDay `json:"days"`
}

func creditResult(ch AccountChange, fx EffectsResult) CreditResult {
	r := CreditResult{
		ExpEarned:     ch.Delta,
		TotalExp:      ch.TotalExp,
		Level:         ch.Level,
		LevelProgress: ch.LevelProgress,
		PetMatured:    fx.PetMatured,
		Unlocked:      fx.Unlocked,
	}
	if ch.LeveledUp {
		lvl := ch.Level
		r.NewLevel = &lvl
	}
	return r
}

func unchangedResult(acc *models.ProgressionAccount) CreditResult {
	s := summarize(acc.TotalExp)
	return CreditResult{
		AlreadyClaimed: true,
		TotalExp:       s.TotalExp,
		Level:          s.Level,
		LevelProgress:  s.LevelProgress,
	}
}

// ClaimLoginBonus advances the login streak and pays the login bonus once
// per business day.
func (s *RewardService) ClaimLoginBonus(userID uint) (LoginBonusResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var (
		out           LoginBonusResult
		change        AccountChange
		credited      bool
		streakChanged bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		acc, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}
		today := s.calendar.Today()
		streak, changed, err := s.streaks.record(tx, userID, progression.StreakLogin, today)
		if err != nil {
			return err
		}
		streakChanged = changed
		out.LoginStreak = streak.CurrentStreak

		if err := touchLogin(tx, userID, today); err != nil {
			return err
		}
		var hist models.LoginHistory
		if err := tx.Where("user_id = ? AND login_date = ?", userID, today.String()).First(&hist).Error; err != nil {
			return fmt.Errorf("load login history: %w", err)
		}
		if hist.BonusClaimed {
			out.CreditResult = unchangedResult(acc)
			return nil
		}

		bonus := progression.LoginBonusExp(streak.CurrentStreak)
		change, err = applyToAccount(tx, acc, bonus)
		if err != nil {
			return err
		}
		if err := tx.Model(&hist).Updates(map[string]any{
			"bonus_claimed": true,
			"exp_earned":    bonus,
		}).Error; err != nil {
			return fmt.Errorf("mark login bonus: %w", err)
		}
		credited = true
		return nil
	})
	if err != nil {
		return LoginBonusResult{}, err
	}

	if streakChanged {
		s.streaks.events.Publish(userID, NewEvent(models.EventStreakUpdated, map[string]any{
			"streak_type": progression.StreakLogin,
			"current":     out.LoginStreak,
		}))
	}
	if credited {
		out.CreditResult = creditResult(change, s.fx.apply(userID, change, "login_bonus"))
	}
	return out, nil
}

func (s *RewardService) claims(tx *gorm.DB, userID uint) ([]models.DailyRewardClaim, error) {
	var rows []models.DailyRewardClaim
	if err := tx.Where("user_id = ?", userID).Order("claim_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load reward claims: %w", err)
	}
	return rows, nil
}

// DailyStatus shows the reward calendar. Claims before the most recent final
// day belong to a finished cycle and are not shown as claimed.
func (s *RewardService) DailyStatus(userID uint) (DailyStatus, error) {
	if err := ensureUserExists(s.db, userID); err != nil {
		return DailyStatus{}, err
	}
	rows, err := s.claims(s.db, userID)
	if err != nil {
		return DailyStatus{}, err
	}

	today := s.calendar.Today().String()
	cycle := map[int]models.DailyRewardClaim{}
	last := 0
	st := DailyStatus{}
	for _, r := range rows {
		if r.ClaimDate == today {
			st.TodayClaimed = true
		}
		cycle[r.RewardDay] = r
		last = r.RewardDay
		if r.RewardDay >= progression.RewardCycleLength {
			cycle = map[int]models.DailyRewardClaim{}
		}
	}
	st.CurrentDay = progression.NextRewardDay(last)

	st.Days = make([]RewardDay, 0, progression.RewardCycleLength)
	for day := 1; day <= progression.RewardCycleLength; day++ {
		rd := RewardDay{
			Day:         day,
			Exp:         progression.RewardFor(day),
			IsBigReward: progression.IsBigRewardDay(day),
		}
		if c, ok := cycle[day]; ok {
			rd.Claimed = true
			rd.ClaimedDate = c.ClaimDate
		}
		st.Days = append(st.Days, rd)
	}
	return st, nil
}

// ClaimDaily pays the next calendar day, boosted by the streak multipliers.
// A second claim on the same business day credits nothing.
func (s *RewardService) ClaimDaily(userID uint) (DailyRewardResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var (
		out      DailyRewardResult
		change   AccountChange
		credited bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		acc, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}
		today := s.calendar.Today().String()

		var existing models.DailyRewardClaim
		err = tx.Where("user_id = ? AND claim_date = ?", userID, today).First(&existing).Error
		if err == nil {
			out.CreditResult = unchangedResult(acc)
			out.RewardDay = existing.RewardDay
			out.BaseExp = progression.RewardFor(existing.RewardDay)
			out.IsBigReward = progression.IsBigRewardDay(existing.RewardDay)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check today's claim: %w", err)
		}

		var last models.DailyRewardClaim
		lastDay := 0
		err = tx.Where("user_id = ?", userID).Order("claim_date DESC, id DESC").First(&last).Error
		switch {
		case err == nil:
			lastDay = last.RewardDay
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load last claim: %w", err)
		}

		day := progression.NextRewardDay(lastDay)
		m, err := s.streaks.multipliers(tx, userID)
		if err != nil {
			return err
		}
		base := progression.RewardFor(day)
		amount := progression.Boost(base, m)

		claim := models.DailyRewardClaim{UserID: userID, ClaimDate: today, RewardDay: day, ExpEarned: amount}
		if err := tx.Create(&claim).Error; err != nil {
			return fmt.Errorf("record claim: %w", err)
		}
		change, err = applyToAccount(tx, acc, amount)
		if err != nil {
			return err
		}
		out.RewardDay = day
		out.BaseExp = base
		out.IsBigReward = progression.IsBigRewardDay(day)
		credited = true
		return nil
	})
	if err != nil {
		return DailyRewardResult{}, err
	}
	if credited {
		out.CreditResult = creditResult(change, s.fx.apply(userID, change, "daily_reward"))
	}
	return out, nil
}
