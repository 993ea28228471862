package progression

import (
	"math"
	"sort"

	"fithub/common"
)

// StreakType names an independently tracked activity.
type StreakType string

const (
	StreakTraining StreakType = "training"
	StreakLogin    StreakType = "login"
)

// Grace day policy bounds.
const (
	DefaultGraceDays = 1
	MaxGraceDays     = 3
)

// ValidateGraceDays rejects settings outside [0, MaxGraceDays].
func ValidateGraceDays(grace int) error {
	if grace < 0 || grace > MaxGraceDays {
		return common.Validation("graceDaysAllowed must be between 0 and %d", MaxGraceDays)
	}
	return nil
}

// Streak is the counter state of one (user, type) pair.
type Streak struct {
	Current    int
	Best       int
	LastActive Date
	GraceUsed  int
}

// Record applies activity on date. Re-recording the last active day is a
// no-op, and so is a date older than it; backfill goes through Recompute.
func (s Streak) Record(date Date, graceAllowed int) Streak {
	if s.LastActive.IsZero() {
		return Streak{Current: 1, Best: max(s.Best, 1), LastActive: date}
	}
	if !date.After(s.LastActive) {
		return s
	}

	gap := date.DaysSince(s.LastActive)
	switch {
	case gap == 1:
		s.Current++
		s.GraceUsed = 0
	case gap <= graceAllowed+1:
		s.Current++
		s.GraceUsed = gap - 1
	default:
		s.Current = 1
		s.GraceUsed = 0
	}
	s.LastActive = date
	s.Best = max(s.Best, s.Current)
	return s
}

// Stale reports whether the streak can no longer be continued from today.
func (s Streak) Stale(today Date, graceAllowed int) bool {
	if s.LastActive.IsZero() || s.Current == 0 {
		return false
	}
	return today.DaysSince(s.LastActive) > graceAllowed+1
}

// Recompute derives the streak from the full activity history. Dates may
// arrive in any order and with duplicates. Best is carried from prior since
// the high-water mark survives deletions. GraceUsed reflects the gap bridged
// by the most recent step, as Record would have left it.
func Recompute(prior Streak, dates []Date, today Date, graceAllowed int) Streak {
	out := Streak{Best: prior.Best}
	if len(dates) == 0 {
		return out
	}

	sorted := make([]Date, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	mostRecent := sorted[0]
	out.LastActive = mostRecent
	if today.DaysSince(mostRecent) > graceAllowed+1 {
		return out
	}

	out.Current = 1
	prev := mostRecent
	for _, d := range sorted[1:] {
		if d == prev {
			continue
		}
		gap := prev.DaysSince(d)
		if gap > graceAllowed+1 {
			break
		}
		if out.Current == 1 {
			out.GraceUsed = gap - 1
		}
		out.Current++
		prev = d
	}
	out.Best = max(out.Best, out.Current)
	return out
}

// Multipliers are the streak bonuses consumed by accrual.
type Multipliers struct {
	Training float64
	Login    float64
}

// TrainingBonus is +14% per day of training streak, capped at +100%.
func TrainingBonus(current int) float64 {
	return math.Min(float64(current)*0.14, 1.0)
}

// LoginBonus is +7% per day of login streak, capped at +50%.
func LoginBonus(current int) float64 {
	return math.Min(float64(current)*0.07, 0.5)
}

// MultipliersFor derives both bonuses from the current streak lengths.
func MultipliersFor(training, login int) Multipliers {
	return Multipliers{Training: TrainingBonus(training), Login: LoginBonus(login)}
}

// Combined sums the bonuses onto a base of 1.
func (m Multipliers) Combined() float64 {
	return 1 + m.Training + m.Login
}

// LoginBonusExp is the EXP granted by the daily login bonus.
func LoginBonusExp(streak int) int64 {
	s := int64(max(streak, 0))
	return 100 + min(s*10, 100) + (s/7)*50
}
