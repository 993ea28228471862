package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fithub/models"
	"fithub/progression"
)

type StreakService struct {
	db           *gorm.DB
	locks        *UserLocker
	calendar     progression.Calendar
	defaultGrace int
	events       *EventHub
}

func NewStreakService(db *gorm.DB, locks *UserLocker, cal progression.Calendar, defaultGrace int, events *EventHub) *StreakService {
	return &StreakService{db: db, locks: locks, calendar: cal, defaultGrace: defaultGrace, events: events}
}

// StreakInfo is the public view of one streak.
type StreakInfo struct {
	Current          int    `json:"current"`
	Best             int    `json:"best"`
	LastActiveDate   string `json:"last_active_date,omitempty"`
	GraceDaysUsed    int    `json:"grace_days_used"`
	GraceDaysAllowed int    `json:"grace_days_allowed"`
}

// StreakOverview backs GET /api/streak.
type StreakOverview struct {
	Training           StreakInfo `json:"training_streak"`
	Login              StreakInfo `json:"login_streak"`
	TrainingMultiplier float64    `json:"training_multiplier"`
	LoginMultiplier    float64    `json:"login_multiplier"`
	CombinedMultiplier float64    `json:"combined_multiplier"`
}

func parseStoredDate(s *string) progression.Date {
	if s == nil || *s == "" {
		return progression.Date{}
	}
	d, err := progression.ParseDate(*s)
	if err != nil {
		return progression.Date{}
	}
	return d
}

func storedDate(d progression.Date) *string {
	if d.IsZero() {
		return nil
	}
	s := d.String()
	return &s
}

func toStreak(row *models.UserStreak) progression.Streak {
	return progression.Streak{
		Current:    row.CurrentStreak,
		Best:       row.BestStreak,
		LastActive: parseStoredDate(row.LastActiveDate),
		GraceUsed:  row.GraceDaysUsed,
	}
}

func streakInfo(row *models.UserStreak, grace int) StreakInfo {
	info := StreakInfo{
		Current:          row.CurrentStreak,
		Best:             row.BestStreak,
		GraceDaysUsed:    row.GraceDaysUsed,
		GraceDaysAllowed: grace,
	}
	if row.LastActiveDate != nil {
		info.LastActiveDate = *row.LastActiveDate
	}
	return info
}

// settings returns the user's settings row, creating it with the configured
// default grace allowance on first access.
func (s *StreakService) settings(tx *gorm.DB, userID uint) (*models.UserSettings, error) {
	var st models.UserSettings
	err := tx.Where("user_id = ?", userID).First(&st).Error
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	st = models.UserSettings{UserID: userID, GraceDaysAllowed: s.defaultGrace}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&st).Error; err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}
	if st.ID == 0 {
		if err := tx.Where("user_id = ?", userID).First(&st).Error; err != nil {
			return nil, fmt.Errorf("reload settings: %w", err)
		}
	}
	return &st, nil
}

// GetSettings returns graceDaysAllowed.
func (s *StreakService) GetSettings(userID uint) (int, error) {
	if err := ensureUserExists(s.db, userID); err != nil {
		return 0, err
	}
	st, err := s.settings(s.db, userID)
	if err != nil {
		return 0, err
	}
	return st.GraceDaysAllowed, nil
}

// UpdateSettings stores a new grace allowance after validating it.
func (s *StreakService) UpdateSettings(userID uint, grace int) (int, error) {
	if err := progression.ValidateGraceDays(grace); err != nil {
		return 0, err
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockAccount(tx, userID); err != nil {
			return err
		}
		st, err := s.settings(tx, userID)
		if err != nil {
			return err
		}
		return tx.Model(st).Updates(map[string]any{
			"grace_days_allowed": grace,
			"updated_at":         time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return grace, nil
}

// load returns the streak row, creating an all-zero one lazily.
func (s *StreakService) load(tx *gorm.DB, userID uint, typ progression.StreakType) (*models.UserStreak, error) {
	var row models.UserStreak
	err := tx.Where("user_id = ? AND streak_type = ?", userID, string(typ)).First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load %s streak: %w", typ, err)
	}
	row = models.UserStreak{UserID: userID, StreakType: string(typ)}
	if err := tx.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create %s streak: %w", typ, err)
	}
	return &row, nil
}

func (s *StreakService) save(tx *gorm.DB, row *models.UserStreak, st progression.Streak) error {
	row.CurrentStreak = st.Current
	row.BestStreak = st.Best
	row.LastActiveDate = storedDate(st.LastActive)
	row.GraceDaysUsed = st.GraceUsed
	return tx.Model(row).Updates(map[string]any{
		"current_streak":   row.CurrentStreak,
		"best_streak":      row.BestStreak,
		"last_active_date": row.LastActiveDate,
		"grace_days_used":  row.GraceDaysUsed,
		"updated_at":       time.Now().UTC(),
	}).Error
}

// record applies activity on date to the typed streak. Callers hold the
// user's lock and run inside a transaction.
func (s *StreakService) record(tx *gorm.DB, userID uint, typ progression.StreakType, date progression.Date) (*models.UserStreak, bool, error) {
	st, err := s.settings(tx, userID)
	if err != nil {
		return nil, false, err
	}
	row, err := s.load(tx, userID, typ)
	if err != nil {
		return nil, false, err
	}
	before := toStreak(row)
	after := before.Record(date, st.GraceDaysAllowed)
	if after == before {
		return row, false, nil
	}
	if err := s.save(tx, row, after); err != nil {
		return nil, false, fmt.Errorf("save %s streak: %w", typ, err)
	}
	return row, true, nil
}

// multipliers reads both streaks as they stand.
func (s *StreakService) multipliers(tx *gorm.DB, userID uint) (progression.Multipliers, error) {
	training, err := s.load(tx, userID, progression.StreakTraining)
	if err != nil {
		return progression.Multipliers{}, err
	}
	login, err := s.load(tx, userID, progression.StreakLogin)
	if err != nil {
		return progression.Multipliers{}, err
	}
	return progression.MultipliersFor(training.CurrentStreak, login.CurrentStreak), nil
}

// recomputeTraining rebuilds the training streak from the remaining records.
func (s *StreakService) recomputeTraining(tx *gorm.DB, userID uint) error {
	st, err := s.settings(tx, userID)
	if err != nil {
		return err
	}
	row, err := s.load(tx, userID, progression.StreakTraining)
	if err != nil {
		return err
	}

	var raw []string
	if err := tx.Model(&models.TrainingRecord{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("record_date", &raw).Error; err != nil {
		return fmt.Errorf("load training dates: %w", err)
	}
	dates := make([]progression.Date, 0, len(raw))
	for _, r := range raw {
		d, err := progression.ParseDate(r)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}

	next := progression.Recompute(toStreak(row), dates, s.calendar.Today(), st.GraceDaysAllowed)
	return s.save(tx, row, next)
}

// lastTrainingDay reads lastActiveDate of the training streak. The zero Date
// means the user never trained.
func lastTrainingDay(tx *gorm.DB, userID uint) (progression.Date, error) {
	var row models.UserStreak
	err := tx.Where("user_id = ? AND streak_type = ?", userID, string(progression.StreakTraining)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return progression.Date{}, nil
	}
	if err != nil {
		return progression.Date{}, err
	}
	return parseStoredDate(row.LastActiveDate), nil
}

// Overview returns both streaks and their multipliers.
func (s *StreakService) Overview(userID uint) (StreakOverview, error) {
	var out StreakOverview
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, userID); err != nil {
			return err
		}
		st, err := s.settings(tx, userID)
		if err != nil {
			return err
		}
		training, err := s.load(tx, userID, progression.StreakTraining)
		if err != nil {
			return err
		}
		login, err := s.load(tx, userID, progression.StreakLogin)
		if err != nil {
			return err
		}
		m := progression.MultipliersFor(training.CurrentStreak, login.CurrentStreak)
		out = StreakOverview{
			Training:           streakInfo(training, st.GraceDaysAllowed),
			Login:              streakInfo(login, st.GraceDaysAllowed),
			TrainingMultiplier: m.Training,
			LoginMultiplier:    m.Login,
			CombinedMultiplier: m.Combined(),
		}
		return nil
	})
	return out, err
}

// RecordLogin advances the login streak for today without paying EXP.
func (s *StreakService) RecordLogin(userID uint) (StreakInfo, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var (
		info    StreakInfo
		changed bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockAccount(tx, userID); err != nil {
			return err
		}
		today := s.calendar.Today()
		row, ch, err := s.record(tx, userID, progression.StreakLogin, today)
		if err != nil {
			return err
		}
		if err := touchLogin(tx, userID, today); err != nil {
			return err
		}
		st, err := s.settings(tx, userID)
		if err != nil {
			return err
		}
		info, changed = streakInfo(row, st.GraceDaysAllowed), ch
		return nil
	})
	if err != nil {
		return StreakInfo{}, err
	}
	if changed {
		s.events.Publish(userID, NewEvent(models.EventStreakUpdated, map[string]any{
			"streak_type": progression.StreakLogin,
			"current":     info.Current,
			"best":        info.Best,
		}))
	}
	return info, nil
}

// touchLogin makes sure a login_histories row exists for the day.
func touchLogin(tx *gorm.DB, userID uint, day progression.Date) error {
	row := models.LoginHistory{UserID: userID, LoginDate: day.String()}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// SweepStale zeroes streaks that can no longer be continued, so multipliers
// stop applying to users who stopped showing up. Best streaks are kept.
func (s *StreakService) SweepStale(ctx context.Context) (int, error) {
	type candidate struct {
		UserID     uint
		StreakType string
	}
	var rows []candidate
	if err := s.db.WithContext(ctx).Model(&models.UserStreak{}).
		Where("current_streak > 0").
		Select("user_id, streak_type").
		Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("list active streaks: %w", err)
	}

	today := s.calendar.Today()
	swept := 0
	for _, c := range rows {
		if err := ctx.Err(); err != nil {
			return swept, err
		}
		reset, err := s.sweepOne(ctx, c.UserID, progression.StreakType(c.StreakType), today)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id":     c.UserID,
				"streak_type": c.StreakType,
			}).Warn("streak sweep failed")
			continue
		}
		if reset {
			swept++
		}
	}
	return swept, nil
}

func (s *StreakService) sweepOne(ctx context.Context, userID uint, typ progression.StreakType, today progression.Date) (bool, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	reset := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockAccount(tx, userID); err != nil {
			return err
		}
		st, err := s.settings(tx, userID)
		if err != nil {
			return err
		}
		row, err := s.load(tx, userID, typ)
		if err != nil {
			return err
		}
		cur := toStreak(row)
		if !cur.Stale(today, st.GraceDaysAllowed) {
			return nil
		}
		cur.Current = 0
		cur.GraceUsed = 0
		reset = true
		return s.save(tx, row, cur)
	})
	return reset, err
}
