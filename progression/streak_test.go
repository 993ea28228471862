package progression

import (
	"math"
	"testing"

	"fithub/common"
)

func day(n int) Date {
	return MustParseDate("2025-03-01").AddDays(n - 1)
}

func TestStreakRecordGapRule(t *testing.T) {
	tests := []struct {
		name      string
		grace     int
		days      []int
		wantCur   int
		wantBest  int
		wantGrace int
	}{
		{"first activity", 1, []int{1}, 1, 1, 0},
		{"consecutive", 1, []int{1, 2, 3}, 3, 3, 0},
		{"one grace day consumed", 1, []int{1, 3}, 2, 2, 1},
		{"gap too wide resets", 1, []int{1, 4}, 1, 1, 0},
		{"no grace resets on a skipped day", 0, []int{5, 7}, 1, 1, 0},
		{"three grace days", 3, []int{1, 5}, 2, 2, 3},
		{"best survives reset", 1, []int{1, 2, 3, 10}, 1, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Streak
			for _, d := range tt.days {
				s = s.Record(day(d), tt.grace)
			}
			if s.Current != tt.wantCur || s.Best != tt.wantBest || s.GraceUsed != tt.wantGrace {
				t.Errorf("got current=%d best=%d grace=%d, want %d/%d/%d",
					s.Current, s.Best, s.GraceUsed, tt.wantCur, tt.wantBest, tt.wantGrace)
			}
			if s.Best < s.Current {
				t.Errorf("best %d below current %d", s.Best, s.Current)
			}
			if s.LastActive != day(tt.days[len(tt.days)-1]) {
				t.Errorf("last active = %s", s.LastActive)
			}
		})
	}
}

func TestStreakRecordSameDayIsIdempotent(t *testing.T) {
	s := Streak{}.Record(day(1), 1).Record(day(2), 1)
	again := s.Record(day(2), 1)
	if again != s {
		t.Errorf("re-recording changed state: %+v -> %+v", s, again)
	}
}

func TestStreakRecordIgnoresOlderDates(t *testing.T) {
	s := Streak{}.Record(day(5), 1)
	if got := s.Record(day(3), 1); got != s {
		t.Errorf("older date changed state: %+v", got)
	}
}

func TestRecompute(t *testing.T) {
	tests := []struct {
		name    string
		grace   int
		today   int
		dates   []int
		wantCur int
	}{
		{"no history", 1, 10, nil, 0},
		{"contiguous run", 1, 10, []int{8, 9, 10}, 3},
		{"grace gaps bridged", 1, 10, []int{4, 6, 8, 10}, 4},
		{"break stops the walk", 1, 8, []int{1, 2, 6, 7}, 2},
		{"stale most recent", 1, 10, []int{5, 6, 7}, 0},
		{"unsorted with duplicates", 0, 10, []int{10, 9, 9, 8, 3}, 3},
		{"edge of grace from today", 2, 10, []int{7}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dates []Date
			for _, d := range tt.dates {
				dates = append(dates, day(d))
			}
			got := Recompute(Streak{Best: 2}, dates, day(tt.today), tt.grace)
			if got.Current != tt.wantCur {
				t.Errorf("current = %d, want %d", got.Current, tt.wantCur)
			}
			if got.Best < 2 || got.Best < got.Current {
				t.Errorf("best = %d lost its high-water mark", got.Best)
			}
		})
	}
}

func TestRecomputeGraceUsedFollowsHead(t *testing.T) {
	got := Recompute(Streak{}, []Date{day(5), day(7)}, day(7), 1)
	if got.Current != 2 || got.GraceUsed != 1 {
		t.Errorf("head gap of 2 = %+v, want current 2 grace 1", got)
	}
	// Older grace gaps do not count once the head step is contiguous.
	got = Recompute(Streak{GraceUsed: 1}, []Date{day(4), day(6), day(7)}, day(7), 1)
	if got.Current != 3 || got.GraceUsed != 0 {
		t.Errorf("contiguous head = %+v, want current 3 grace 0", got)
	}
	got = Recompute(Streak{GraceUsed: 1}, []Date{day(7)}, day(7), 1)
	if got.GraceUsed != 0 {
		t.Errorf("single day grace = %d, want 0", got.GraceUsed)
	}
}

func TestStale(t *testing.T) {
	s := Streak{Current: 4, Best: 4, LastActive: day(5)}
	if s.Stale(day(7), 1) {
		t.Error("gap of 2 is still within one grace day")
	}
	if !s.Stale(day(8), 1) {
		t.Error("gap of 3 must be stale with one grace day")
	}
	if (Streak{}).Stale(day(30), 0) {
		t.Error("empty streak is never stale")
	}
}

func TestBonuses(t *testing.T) {
	if got := TrainingBonus(3); math.Abs(got-0.42) > 1e-9 {
		t.Errorf("TrainingBonus(3) = %v", TrainingBonus(3))
	}
	if TrainingBonus(8) != 1.0 || TrainingBonus(100) != 1.0 {
		t.Error("training bonus must cap at 1.0")
	}
	if LoginBonus(8) != 0.5 {
		t.Errorf("LoginBonus(8) = %v, want 0.5", LoginBonus(8))
	}
	if got := MultipliersFor(100, 100).Combined(); got != 2.5 {
		t.Errorf("max combined = %v, want 2.5", got)
	}
	if got := MultipliersFor(0, 0).Combined(); got != 1 {
		t.Errorf("neutral combined = %v", got)
	}
}

func TestLoginBonusExp(t *testing.T) {
	tests := map[int]int64{
		0:  100,
		1:  110,
		6:  160,
		7:  220,
		10: 250,
		14: 300,
		21: 350,
	}
	for streak, want := range tests {
		if got := LoginBonusExp(streak); got != want {
			t.Errorf("LoginBonusExp(%d) = %d, want %d", streak, got, want)
		}
	}
}

func TestValidateGraceDays(t *testing.T) {
	for g := 0; g <= MaxGraceDays; g++ {
		if err := ValidateGraceDays(g); err != nil {
			t.Errorf("grace %d rejected: %v", g, err)
		}
	}
	for _, g := range []int{-1, 4} {
		if err := ValidateGraceDays(g); !common.IsValidation(err) {
			t.Errorf("grace %d accepted", g)
		}
	}
}
