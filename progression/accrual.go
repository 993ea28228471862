package progression

import (
	"math"
	"strings"

	"fithub/common"
)

// Set input bounds. Out-of-range values reject the batch, they are never clamped.
const (
	MinWeight = 0.0
	MaxWeight = 500.0
	MinReps   = 0
	MaxReps   = 20
)

// Difficulty coefficients.
const (
	CoefficientHard   = 30
	CoefficientMedium = 20
	CoefficientEasy   = 10
	CoefficientCustom = 15
)

// DifficultyCoefficient maps exercise metadata to its coefficient. Custom
// exercises and unrated catalog entries share the middle value.
func DifficultyCoefficient(difficulty string, custom bool) int {
	if custom {
		return CoefficientCustom
	}
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "hard", "上級":
		return CoefficientHard
	case "medium", "中級":
		return CoefficientMedium
	case "easy", "初級":
		return CoefficientEasy
	default:
		return CoefficientCustom
	}
}

// ExpConfig tunes accrual. Zero values are not meaningful; start from
// DefaultExpConfig.
type ExpConfig struct {
	DailyLimit          int64
	PastDaysThreshold   int
	PastExpMultiplier   float64
	PastLimitMultiplier float64
	MaxExpPerSet        int64
	ExpCoefficient      float64
}

func DefaultExpConfig() ExpConfig {
	return ExpConfig{
		DailyLimit:          50000,
		PastDaysThreshold:   2,
		PastExpMultiplier:   0.25,
		PastLimitMultiplier: 0.5,
		MaxExpPerSet:        2000,
		ExpCoefficient:      1.0,
	}
}

// IsPast reports whether a record dated daysAgo days back earns reduced EXP.
func (c ExpConfig) IsPast(daysAgo int) bool {
	return daysAgo >= c.PastDaysThreshold
}

func (c ExpConfig) TemporalMultiplier(past bool) float64 {
	if past {
		return c.PastExpMultiplier
	}
	return 1.0
}

// DailyLimitFor returns the ceiling for a date. Past dates get a fraction of
// the normal ceiling, truncated.
func (c ExpConfig) DailyLimitFor(past bool) int64 {
	if past {
		return int64(float64(c.DailyLimit) * c.PastLimitMultiplier)
	}
	return c.DailyLimit
}

// LoggedSet is one weight x reps entry.
type LoggedSet struct {
	Weight float64
	Reps   int
}

// LoggedExercise is one exercise of a batch with its resolved coefficient.
type LoggedExercise struct {
	Coefficient int
	Sets        []LoggedSet
}

// ValidateSet checks the physical bounds of a set.
func ValidateSet(s LoggedSet) error {
	if math.IsNaN(s.Weight) || s.Weight < MinWeight || s.Weight > MaxWeight {
		return common.Validation("weight must be between %.0f and %.0f kg", MinWeight, MaxWeight)
	}
	if s.Reps < MinReps || s.Reps > MaxReps {
		return common.Validation("reps must be between %d and %d", MinReps, MaxReps)
	}
	return nil
}

// ValidateBatch checks every set before anything is credited.
func ValidateBatch(exercises []LoggedExercise) error {
	if len(exercises) == 0 {
		return common.Validation("at least one exercise is required")
	}
	for _, ex := range exercises {
		for _, s := range ex.Sets {
			if err := ValidateSet(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetExp is the EXP for a single set: rounded half away from zero, capped at
// MaxExpPerSet and never below 1.
func (c ExpConfig) SetExp(coefficient int, s LoggedSet, temporal float64) int64 {
	raw := int64(math.Round(float64(coefficient) * s.Weight * float64(s.Reps) * c.ExpCoefficient * temporal))
	if raw > c.MaxExpPerSet {
		raw = c.MaxExpPerSet
	}
	if raw < 1 {
		raw = 1
	}
	return raw
}

// BatchExp sums SetExp over every set of every exercise.
func (c ExpConfig) BatchExp(exercises []LoggedExercise, temporal float64) int64 {
	var total int64
	for _, ex := range exercises {
		for _, s := range ex.Sets {
			total += c.SetExp(ex.Coefficient, s, temporal)
		}
	}
	return total
}

// LevelMultiplier grants +1% per level, flat from level 100 on.
func LevelMultiplier(level int) float64 {
	if level > 100 {
		level = 100
	}
	if level < 0 {
		level = 0
	}
	return 1 + float64(level)/100
}

// AccrualInput is everything the calculator needs from storage.
type AccrualInput struct {
	Exercises []LoggedExercise
	// DaysAgo is today minus the attributed date. Negative means the future.
	DaysAgo int
	Level   int
	Streaks Multipliers
	// AlreadyCredited is the EXP already recorded for the attributed date.
	AlreadyCredited int64
}

// Accrual is the outcome of one batch.
type Accrual struct {
	Past             bool
	BatchExp         int64
	LevelMultiplier  float64
	StreakMultiplier float64
	BoostedExp       int64
	DailyLimit       int64
	CreditedExp      int64
}

// Compute validates a batch and derives the EXP to credit under the ceiling
// of the attributed date.
func (c ExpConfig) Compute(in AccrualInput) (Accrual, error) {
	if in.DaysAgo < 0 {
		return Accrual{}, common.Validation("cannot record a workout for a future date")
	}
	if err := ValidateBatch(in.Exercises); err != nil {
		return Accrual{}, err
	}

	past := c.IsPast(in.DaysAgo)
	a := Accrual{
		Past:             past,
		BatchExp:         c.BatchExp(in.Exercises, c.TemporalMultiplier(past)),
		LevelMultiplier:  LevelMultiplier(in.Level),
		StreakMultiplier: in.Streaks.Combined(),
		DailyLimit:       c.DailyLimitFor(past),
	}
	a.BoostedExp = int64(math.Round(float64(a.BatchExp) * a.LevelMultiplier * a.StreakMultiplier))
	a.CreditedExp = CapToCeiling(a.BoostedExp, a.DailyLimit, in.AlreadyCredited)
	return a, nil
}

// CapToCeiling limits amount to what is left under limit.
func CapToCeiling(amount, limit, already int64) int64 {
	remaining := limit - already
	if remaining < 0 {
		remaining = 0
	}
	if amount > remaining {
		return remaining
	}
	return amount
}
