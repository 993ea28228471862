package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fithub/common"
	"fithub/models"
	"fithub/progression"
)

const maxCustomExerciseName = 100

type WorkoutService struct {
	db       *gorm.DB
	locks    *UserLocker
	exp      progression.ExpConfig
	calendar progression.Calendar
	streaks  *StreakService
	pets     *PetService
	fx       *creditEffects
}

func NewWorkoutService(db *gorm.DB, locks *UserLocker, exp progression.ExpConfig, cal progression.Calendar, streaks *StreakService, pets *PetService, fx *creditEffects) *WorkoutService {
	return &WorkoutService{db: db, locks: locks, exp: exp, calendar: cal, streaks: streaks, pets: pets, fx: fx}
}

type SetInput struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

type ExerciseInput struct {
	ExerciseID uint       `json:"exercise_id"`
	IsCustom   bool       `json:"is_custom"`
	Sets       []SetInput `json:"sets"`
}

// SaveInput is one workout submission for an attributed date.
type SaveInput struct {
	Date      string          `json:"date"`
	Exercises []ExerciseInput `json:"exercises"`
}

// SaveResult reports the credit of one submission.
type SaveResult struct {
	ID               uint                `json:"id"`
	Date             string              `json:"date"`
	ExpGained        int64               `json:"exp_gained"`
	NewLevel         *int                `json:"new_level,omitempty"`
	TotalExp         int64               `json:"total_exp"`
	CurrentLevel     int                 `json:"current_level"`
	LevelProgress    float64             `json:"level_progress"`
	BatchExp         int64               `json:"batch_exp"`
	LevelMultiplier  float64             `json:"level_multiplier"`
	StreakMultiplier float64             `json:"streak_multiplier"`
	DailyLimit       int64               `json:"daily_limit"`
	Capped           bool                `json:"capped"`
	PastRecord       bool                `json:"past_record"`
	PetMatured       bool                `json:"pet_matured,omitempty"`
	Unlocked         []UnlockedCompanion `json:"unlocked,omitempty"`
}

// DeleteResult reports the EXP removed with a record.
type DeleteResult struct {
	ExpRemoved int64 `json:"exp_removed"`
	TotalExp   int64 `json:"total_exp"`
	Level      int   `json:"level"`
}

// ExerciseCatalog is the master list plus the user's own exercises.
type ExerciseCatalog struct {
	Exercises       []models.Exercise       `json:"exercises"`
	CustomExercises []models.CustomExercise `json:"custom_exercises"`
}

// RecordPage is one page of a user's training history.
type RecordPage struct {
	Records []models.TrainingRecord `json:"records"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	Size    int                     `json:"size"`
}

func toLogged(in []ExerciseInput) ([]progression.LoggedExercise, error) {
	out := make([]progression.LoggedExercise, len(in))
	for i, ex := range in {
		if len(ex.Sets) == 0 {
			return nil, common.Validation("exercise %d has no sets", i+1)
		}
		sets := make([]progression.LoggedSet, len(ex.Sets))
		for j, s := range ex.Sets {
			sets[j] = progression.LoggedSet{Weight: s.Weight, Reps: s.Reps}
		}
		out[i] = progression.LoggedExercise{Sets: sets}
	}
	return out, progression.ValidateBatch(out)
}

// resolveCoefficients fills in the difficulty coefficient of each exercise.
func resolveCoefficients(tx *gorm.DB, userID uint, in []ExerciseInput, logged []progression.LoggedExercise) error {
	for i, ex := range in {
		if ex.IsCustom {
			var ce models.CustomExercise
			err := tx.Where("id = ? AND user_id = ?", ex.ExerciseID, userID).First(&ce).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NotFound("custom exercise")
			}
			if err != nil {
				return fmt.Errorf("load custom exercise: %w", err)
			}
			logged[i].Coefficient = progression.DifficultyCoefficient("", true)
			continue
		}
		var e models.Exercise
		err := tx.First(&e, ex.ExerciseID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFound("exercise")
		}
		if err != nil {
			return fmt.Errorf("load exercise: %w", err)
		}
		logged[i].Coefficient = progression.DifficultyCoefficient(e.Difficulty, false)
	}
	return nil
}

// Save credits a workout to the attributed date. Saves for a date that already
// has a record append to it, and the daily ceiling covers all of them.
func (s *WorkoutService) Save(userID uint, in SaveInput) (SaveResult, error) {
	date, err := progression.ParseDate(in.Date)
	if err != nil {
		return SaveResult{}, err
	}
	today := s.calendar.Today()
	if date.After(today) {
		return SaveResult{}, common.Validation("cannot record a workout for a future date")
	}
	logged, err := toLogged(in.Exercises)
	if err != nil {
		return SaveResult{}, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var (
		out           SaveResult
		change        AccountChange
		streakChanged bool
		streakCurrent int
	)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		acc, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}
		if err := resolveCoefficients(tx, userID, in.Exercises, logged); err != nil {
			return err
		}
		// Multipliers reflect the streaks before this workout counts.
		m, err := s.streaks.multipliers(tx, userID)
		if err != nil {
			return err
		}

		rec, err := s.recordFor(tx, userID, date)
		if err != nil {
			return err
		}
		accr, err := s.exp.Compute(progression.AccrualInput{
			Exercises:       logged,
			DaysAgo:         today.DaysSince(date),
			Level:           progression.LevelFromExp(acc.TotalExp),
			Streaks:         m,
			AlreadyCredited: rec.ExpEarned,
		})
		if err != nil {
			return err
		}

		if err := s.appendExercises(tx, rec, in.Exercises); err != nil {
			return err
		}
		rec.ExpEarned += accr.CreditedExp
		if err := tx.Model(rec).Updates(map[string]any{
			"exp_earned": rec.ExpEarned,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
			return fmt.Errorf("update record: %w", err)
		}

		change, err = applyToAccount(tx, acc, accr.CreditedExp)
		if err != nil {
			return err
		}

		streak, changed, err := s.streaks.record(tx, userID, progression.StreakTraining, date)
		if err != nil {
			return err
		}
		streakChanged, streakCurrent = changed, streak.CurrentStreak

		out = SaveResult{
			ID:               rec.ID,
			Date:             rec.RecordDate,
			ExpGained:        accr.CreditedExp,
			TotalExp:         change.TotalExp,
			CurrentLevel:     change.Level,
			LevelProgress:    change.LevelProgress,
			BatchExp:         accr.BatchExp,
			LevelMultiplier:  accr.LevelMultiplier,
			StreakMultiplier: accr.StreakMultiplier,
			DailyLimit:       accr.DailyLimit,
			Capped:           accr.CreditedExp < accr.BoostedExp,
			PastRecord:       accr.Past,
		}
		if change.LeveledUp {
			lvl := change.Level
			out.NewLevel = &lvl
		}
		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"date":    out.Date,
		"exp":     out.ExpGained,
		"capped":  out.Capped,
	}).Info("💪 Workout saved")

	if streakChanged {
		s.streaks.events.Publish(userID, NewEvent(models.EventStreakUpdated, map[string]any{
			"streak_type": progression.StreakTraining,
			"current":     streakCurrent,
		}))
	}
	fx := s.fx.apply(userID, change, "workout")
	out.PetMatured, out.Unlocked = fx.PetMatured, fx.Unlocked
	return out, nil
}

func (s *WorkoutService) recordFor(tx *gorm.DB, userID uint, date progression.Date) (*models.TrainingRecord, error) {
	var rec models.TrainingRecord
	err := tx.Where("user_id = ? AND record_date = ?", userID, date.String()).First(&rec).Error
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load record: %w", err)
	}
	rec = models.TrainingRecord{UserID: userID, RecordDate: date.String()}
	if err := tx.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return &rec, nil
}

// appendExercises stores the submission after whatever the record already
// holds, continuing order_index.
func (s *WorkoutService) appendExercises(tx *gorm.DB, rec *models.TrainingRecord, in []ExerciseInput) error {
	var next int
	if err := tx.Model(&models.TrainingRecordExercise{}).
		Where("record_id = ?", rec.ID).
		Select("COALESCE(MAX(order_index), -1) + 1").
		Scan(&next).Error; err != nil {
		return fmt.Errorf("load exercise order: %w", err)
	}

	for i, ex := range in {
		id := ex.ExerciseID
		row := models.TrainingRecordExercise{RecordID: rec.ID, OrderIndex: next + i}
		if ex.IsCustom {
			row.CustomExerciseID = &id
		} else {
			row.ExerciseID = &id
		}
		for j, set := range ex.Sets {
			row.Sets = append(row.Sets, models.TrainingSet{SetNumber: j + 1, Weight: set.Weight, Reps: set.Reps})
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("save exercise: %w", err)
		}
	}
	return nil
}

// DeleteRecord removes a record and takes back the EXP it earned from the
// account and the active pet, then rebuilds the training streak from what is
// left. Everything happens in one transaction.
func (s *WorkoutService) DeleteRecord(userID, recordID uint) (DeleteResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var out DeleteResult
	var change AccountChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		acc, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}
		var rec models.TrainingRecord
		err = tx.Where("id = ? AND user_id = ?", recordID, userID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFound("record")
		}
		if err != nil {
			return fmt.Errorf("load record: %w", err)
		}

		exerciseIDs := tx.Model(&models.TrainingRecordExercise{}).Select("id").Where("record_id = ?", rec.ID)
		if err := tx.Where("record_exercise_id IN (?)", exerciseIDs).Delete(&models.TrainingSet{}).Error; err != nil {
			return fmt.Errorf("delete sets: %w", err)
		}
		if err := tx.Where("record_id = ?", rec.ID).Delete(&models.TrainingRecordExercise{}).Error; err != nil {
			return fmt.Errorf("delete exercises: %w", err)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return fmt.Errorf("delete record: %w", err)
		}

		change, err = applyToAccount(tx, acc, -rec.ExpEarned)
		if err != nil {
			return err
		}
		if err := s.pets.debitActive(tx, userID, rec.ExpEarned); err != nil {
			return err
		}
		if err := s.streaks.recomputeTraining(tx, userID); err != nil {
			return err
		}
		out = DeleteResult{ExpRemoved: rec.ExpEarned, TotalExp: change.TotalExp, Level: change.Level}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	if out.ExpRemoved > 0 {
		s.fx.events.Publish(userID, NewEvent(models.EventExpDebited, map[string]any{
			"source":    "record_deleted",
			"amount":    out.ExpRemoved,
			"total_exp": out.TotalExp,
			"level":     out.Level,
		}))
	}
	return out, nil
}

// DeleteSet removes one set from a record. The record keeps its EXP.
func (s *WorkoutService) DeleteSet(userID, setID uint) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var set models.TrainingSet
		err := tx.Joins("JOIN training_record_exercises ON training_record_exercises.id = training_sets.record_exercise_id").
			Joins("JOIN training_records ON training_records.id = training_record_exercises.record_id").
			Where("training_sets.id = ? AND training_records.user_id = ?", setID, userID).
			First(&set).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFound("set")
		}
		if err != nil {
			return fmt.Errorf("load set: %w", err)
		}
		if err := tx.Delete(&set).Error; err != nil {
			return fmt.Errorf("delete set: %w", err)
		}

		var left int64
		if err := tx.Model(&models.TrainingSet{}).Where("record_exercise_id = ?", set.RecordExerciseID).Count(&left).Error; err != nil {
			return fmt.Errorf("count sets: %w", err)
		}
		if left == 0 {
			return tx.Delete(&models.TrainingRecordExercise{}, set.RecordExerciseID).Error
		}
		return nil
	})
}

// ListRecords pages through the user's records, newest date first.
func (s *WorkoutService) ListRecords(userID uint, page, size int) (RecordPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	out := RecordPage{Page: page, Size: size, Records: []models.TrainingRecord{}}

	q := s.db.Model(&models.TrainingRecord{}).Where("user_id = ?", userID)
	if err := q.Count(&out.Total).Error; err != nil {
		return out, fmt.Errorf("count records: %w", err)
	}
	err := s.db.Where("user_id = ?", userID).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Exercises.Sets", func(db *gorm.DB) *gorm.DB { return db.Order("set_number ASC") }).
		Preload("Exercises.Exercise").
		Preload("Exercises.CustomExercise").
		Order("record_date DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&out.Records).Error
	if err != nil {
		return out, fmt.Errorf("load records: %w", err)
	}
	return out, nil
}

func (s *WorkoutService) ListExercises(userID uint) (ExerciseCatalog, error) {
	out := ExerciseCatalog{Exercises: []models.Exercise{}, CustomExercises: []models.CustomExercise{}}
	if err := s.db.Order("muscle_group ASC, name ASC").Find(&out.Exercises).Error; err != nil {
		return out, fmt.Errorf("load exercises: %w", err)
	}
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&out.CustomExercises).Error; err != nil {
		return out, fmt.Errorf("load custom exercises: %w", err)
	}
	return out, nil
}

func (s *WorkoutService) CreateCustomExercise(userID uint, name string) (models.CustomExercise, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxCustomExerciseName {
		return models.CustomExercise{}, common.Validation("name must be 1 to %d characters", maxCustomExerciseName)
	}
	if err := ensureUserExists(s.db, userID); err != nil {
		return models.CustomExercise{}, err
	}
	ce := models.CustomExercise{UserID: userID, Name: name}
	if err := s.db.Create(&ce).Error; err != nil {
		return models.CustomExercise{}, fmt.Errorf("create custom exercise: %w", err)
	}
	return ce, nil
}

// DeleteCustomExercise refuses to delete an exercise that logged sets still
// point at.
func (s *WorkoutService) DeleteCustomExercise(userID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var ce models.CustomExercise
		err := tx.Where("id = ? AND user_id = ?", id, userID).First(&ce).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFound("custom exercise")
		}
		if err != nil {
			return fmt.Errorf("load custom exercise: %w", err)
		}
		var used int64
		if err := tx.Model(&models.TrainingRecordExercise{}).Where("custom_exercise_id = ?", id).Count(&used).Error; err != nil {
			return fmt.Errorf("check custom exercise usage: %w", err)
		}
		if used > 0 {
			return common.Conflict("custom exercise is used by %d logged exercises", used)
		}
		return tx.Delete(&ce).Error
	})
}
