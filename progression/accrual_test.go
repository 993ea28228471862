package progression

import (
	"testing"

	"fithub/common"
)

func TestDifficultyCoefficient(t *testing.T) {
	tests := []struct {
		difficulty string
		custom     bool
		want       int
	}{
		{"hard", false, 30},
		{"上級", false, 30},
		{"Medium", false, 20},
		{"中級", false, 20},
		{"easy", false, 10},
		{"初級", false, 10},
		{"", false, 15},
		{"legendary", false, 15},
		{"hard", true, 15},
	}
	for _, tt := range tests {
		if got := DifficultyCoefficient(tt.difficulty, tt.custom); got != tt.want {
			t.Errorf("DifficultyCoefficient(%q, %v) = %d, want %d", tt.difficulty, tt.custom, got, tt.want)
		}
	}
}

func TestSetExp(t *testing.T) {
	cfg := DefaultExpConfig()
	tests := []struct {
		name     string
		coef     int
		set      LoggedSet
		temporal float64
		want     int64
	}{
		{"capped at max per set", 30, LoggedSet{Weight: 100, Reps: 10}, 1.0, 2000},
		{"under the cap", 10, LoggedSet{Weight: 20, Reps: 5}, 1.0, 1000},
		{"past multiplier", 10, LoggedSet{Weight: 20, Reps: 5}, 0.25, 250},
		{"bodyweight floor", 20, LoggedSet{Weight: 0, Reps: 12}, 1.0, 1},
		{"zero reps floor", 20, LoggedSet{Weight: 80, Reps: 0}, 1.0, 1},
		{"rounds half away from zero", 10, LoggedSet{Weight: 0.25, Reps: 1}, 1.0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.SetExp(tt.coef, tt.set, tt.temporal); got != tt.want {
				t.Errorf("SetExp = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateSetRejectsOutOfRange(t *testing.T) {
	bad := []LoggedSet{
		{Weight: -1, Reps: 5},
		{Weight: 500.5, Reps: 5},
		{Weight: 50, Reps: -1},
		{Weight: 50, Reps: 21},
	}
	for _, s := range bad {
		if err := ValidateSet(s); !common.IsValidation(err) {
			t.Errorf("ValidateSet(%+v) = %v, want validation error", s, err)
		}
	}
	for _, s := range []LoggedSet{{0, 0}, {500, 20}} {
		if err := ValidateSet(s); err != nil {
			t.Errorf("ValidateSet(%+v) = %v, want nil", s, err)
		}
	}
}

func TestComputeRejectsWholeBatch(t *testing.T) {
	cfg := DefaultExpConfig()
	_, err := cfg.Compute(AccrualInput{
		Exercises: []LoggedExercise{
			{Coefficient: 20, Sets: []LoggedSet{{Weight: 60, Reps: 8}}},
			{Coefficient: 20, Sets: []LoggedSet{{Weight: 60, Reps: 8}, {Weight: 60, Reps: 25}}},
		},
		Level: 1,
	})
	if !common.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestComputeRejectsFutureDate(t *testing.T) {
	cfg := DefaultExpConfig()
	_, err := cfg.Compute(AccrualInput{
		Exercises: []LoggedExercise{{Coefficient: 10, Sets: []LoggedSet{{Weight: 10, Reps: 1}}}},
		DaysAgo:   -1,
	})
	if !common.IsValidation(err) {
		t.Fatalf("expected validation error for future date, got %v", err)
	}
}

func TestComputeAppliesMultipliers(t *testing.T) {
	cfg := DefaultExpConfig()
	a, err := cfg.Compute(AccrualInput{
		Exercises: []LoggedExercise{{Coefficient: 10, Sets: []LoggedSet{{Weight: 20, Reps: 5}}}},
		Level:     50,
		Streaks:   MultipliersFor(2, 2),
	})
	if err != nil {
		t.Fatal(err)
	}
	// 1000 * 1.5 * (1 + 0.28 + 0.14)
	if a.BatchExp != 1000 || a.BoostedExp != 2130 || a.CreditedExp != 2130 {
		t.Errorf("got batch=%d boosted=%d credited=%d", a.BatchExp, a.BoostedExp, a.CreditedExp)
	}
	if a.Past {
		t.Error("today should not be a past record")
	}
}

func TestComputePastRecord(t *testing.T) {
	cfg := DefaultExpConfig()
	a, err := cfg.Compute(AccrualInput{
		Exercises:       []LoggedExercise{{Coefficient: 10, Sets: []LoggedSet{{Weight: 20, Reps: 5}}}},
		DaysAgo:         2,
		Level:           2,
		AlreadyCredited: 24900,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !a.Past || a.DailyLimit != 25000 {
		t.Fatalf("past=%v limit=%d", a.Past, a.DailyLimit)
	}
	// 250 * 1.02 = 255, only 100 left under the past ceiling.
	if a.BoostedExp != 255 || a.CreditedExp != 100 {
		t.Errorf("boosted=%d credited=%d", a.BoostedExp, a.CreditedExp)
	}
}

func TestYesterdayIsRecent(t *testing.T) {
	cfg := DefaultExpConfig()
	if cfg.IsPast(1) {
		t.Error("yesterday must earn full EXP")
	}
	if !cfg.IsPast(2) {
		t.Error("two days ago must be a past record")
	}
}

func TestLevelMultiplierCap(t *testing.T) {
	if got := LevelMultiplier(1); got != 1.01 {
		t.Errorf("LevelMultiplier(1) = %v", got)
	}
	if LevelMultiplier(100) != 2 || LevelMultiplier(400) != 2 {
		t.Error("level multiplier must flatten at level 100")
	}
}

func TestCeilingHoldsAcrossSplitBatches(t *testing.T) {
	cfg := DefaultExpConfig()
	heavy := LoggedExercise{Coefficient: 30, Sets: []LoggedSet{{Weight: 100, Reps: 10}, {Weight: 100, Reps: 10}, {Weight: 100, Reps: 10}}}

	for _, batches := range []int{1, 2, 5, 13} {
		var credited int64
		for i := 0; i < batches; i++ {
			a, err := cfg.Compute(AccrualInput{
				Exercises:       []LoggedExercise{heavy, heavy, heavy},
				Level:           100,
				Streaks:         MultipliersFor(30, 30),
				AlreadyCredited: credited,
			})
			if err != nil {
				t.Fatal(err)
			}
			credited += a.CreditedExp
		}
		if credited > cfg.DailyLimit {
			t.Errorf("%d batches credited %d, above the ceiling %d", batches, credited, cfg.DailyLimit)
		}
	}
}

func TestCapToCeiling(t *testing.T) {
	if got := CapToCeiling(500, 1000, 1200); got != 0 {
		t.Errorf("over-credited day must yield 0, got %d", got)
	}
	if got := CapToCeiling(500, 1000, 700); got != 300 {
		t.Errorf("got %d, want 300", got)
	}
}
