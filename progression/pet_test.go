package progression

import (
	"strings"
	"testing"

	"fithub/common"
)

func TestStageOf(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, StageEgg}, {10, StageEgg},
		{11, StageJuvenile}, {30, StageJuvenile},
		{31, StageMature}, {999, StageMature},
	}
	for _, tt := range tests {
		if got := StageOf(tt.level); got != tt.want {
			t.Errorf("StageOf(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestMood(t *testing.T) {
	today := day(20)
	tests := []struct {
		name string
		last Date
		want int
	}{
		{"no history", Date{}, MoodNoHistory},
		{"today", day(20), MoodGreat},
		{"yesterday", day(19), MoodGreat},
		{"two days", day(18), MoodEnergetic},
		{"three days", day(17), MoodNormal},
		{"four days", day(16), MoodLonely},
		{"a week", day(13), MoodLonely},
		{"eight days", day(12), MoodWeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mood(tt.last, today); got != tt.want {
				t.Errorf("Mood = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMoodLabel(t *testing.T) {
	want := map[int]string{100: "great", 80: "energetic", 60: "normal", 40: "lonely", 50: "sleepy", 20: "weak", 0: "weak"}
	for score, label := range want {
		if got := MoodLabel(score); got != label {
			t.Errorf("MoodLabel(%d) = %q, want %q", score, got, label)
		}
	}
}

func TestGrowMaturedFiresOnce(t *testing.T) {
	threshold := RequiredExp(31)
	var total int64
	deltas := []int64{threshold / 2, threshold/2 - 10, 20, 500, 1000}
	fired := 0
	for i, d := range deltas {
		g := Grow(total, d)
		if g.Matured {
			fired++
			if total >= threshold || g.TotalExp < threshold {
				t.Errorf("delta %d flagged matured without crossing the threshold", i)
			}
		}
		total = g.TotalExp
	}
	if fired != 1 {
		t.Errorf("matured fired %d times, want exactly once", fired)
	}
}

func TestGrowFloorsAtZero(t *testing.T) {
	g := Grow(RequiredExp(31)+5, -RequiredExp(40))
	if g.TotalExp != 0 || g.Level != 1 || g.Stage != StageEgg {
		t.Errorf("got %+v", g)
	}
	if g.Matured || g.LeveledUp {
		t.Error("a debit never matures or levels up")
	}
}

func TestGrowRegainAfterRegressionFiresAgain(t *testing.T) {
	g := Grow(RequiredExp(31), -100)
	if g.Stage != StageJuvenile {
		t.Fatalf("expected regression to juvenile, got stage %d", g.Stage)
	}
	if again := Grow(g.TotalExp, 100); !again.Matured {
		t.Error("matured is computed from actual before/after stages")
	}
}

func TestStageImages(t *testing.T) {
	imgs := StageImages{Egg: "egg.png", Child: "child.png", Adult: "adult.png"}
	if imgs.For(StageEgg) != "egg.png" || imgs.For(StageJuvenile) != "child.png" || imgs.For(StageMature) != "adult.png" {
		t.Errorf("wrong image selection: %+v", imgs)
	}
}

func TestNormalizePetName(t *testing.T) {
	name, err := NormalizePetName(nil)
	if err != nil || name != DefaultPetName {
		t.Errorf("nil name = %q, %v", name, err)
	}
	padded := "  Mochi  "
	if name, _ := NormalizePetName(&padded); name != "Mochi" {
		t.Errorf("trimmed name = %q", name)
	}
	blank := "   "
	if _, err := NormalizePetName(&blank); !common.IsValidation(err) {
		t.Errorf("blank name accepted: %v", err)
	}
	long := strings.Repeat("あ", MaxPetNameLength+1)
	if _, err := NormalizePetName(&long); !common.IsValidation(err) {
		t.Errorf("long name accepted: %v", err)
	}
	exact := strings.Repeat("あ", MaxPetNameLength)
	if _, err := NormalizePetName(&exact); err != nil {
		t.Errorf("50 character name rejected: %v", err)
	}
}
