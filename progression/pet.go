package progression

import (
	"strings"
	"unicode/utf8"

	"fithub/common"
)

// Growth stages.
const (
	StageEgg      = 1
	StageJuvenile = 2
	StageMature   = 3
)

// Mood scores. MoodNoHistory is the neutral value for a user who never trained.
const (
	MoodGreat     = 100
	MoodEnergetic = 80
	MoodNormal    = 60
	MoodLonely    = 40
	MoodNoHistory = 50
	MoodWeak      = 20
)

const (
	DefaultPetName   = "Partner"
	MaxPetNameLength = 50
)

// StageOf maps a pet level to its growth stage.
func StageOf(level int) int {
	switch {
	case level >= 31:
		return StageMature
	case level >= 11:
		return StageJuvenile
	default:
		return StageEgg
	}
}

func StageName(stage int) string {
	switch stage {
	case StageEgg:
		return "egg"
	case StageJuvenile:
		return "juvenile"
	case StageMature:
		return "mature"
	default:
		return "unknown"
	}
}

// Mood derives the mood score from the last training day. A zero lastActive
// means there is no training history at all.
func Mood(lastActive, today Date) int {
	if lastActive.IsZero() {
		return MoodNoHistory
	}
	days := today.DaysSince(lastActive)
	switch {
	case days <= 1:
		return MoodGreat
	case days == 2:
		return MoodEnergetic
	case days == 3:
		return MoodNormal
	case days <= 7:
		return MoodLonely
	default:
		return MoodWeak
	}
}

func MoodLabel(score int) string {
	switch score {
	case MoodGreat:
		return "great"
	case MoodEnergetic:
		return "energetic"
	case MoodNormal:
		return "normal"
	case MoodLonely:
		return "lonely"
	case MoodNoHistory:
		return "sleepy"
	default:
		return "weak"
	}
}

// StageImages holds the artwork of a companion type, one per stage.
type StageImages struct {
	Egg   string
	Child string
	Adult string
}

// For picks the image matching stage.
func (i StageImages) For(stage int) string {
	switch stage {
	case StageEgg:
		return i.Egg
	case StageJuvenile:
		return i.Child
	case StageMature:
		return i.Adult
	}
	return ""
}

// Growth describes a pet's state after an EXP change.
type Growth struct {
	TotalExp  int64
	OldLevel  int
	Level     int
	OldStage  int
	Stage     int
	LeveledUp bool
	// Matured fires only on the change that moves the pet into the mature stage.
	Matured bool
}

// Grow applies delta to a pet's EXP, floored at zero, and derives the level
// and stage transition from the actual before and after values.
func Grow(totalExp, delta int64) Growth {
	g := Growth{
		TotalExp: ApplyDelta(totalExp, delta),
		OldLevel: LevelFromExp(totalExp),
	}
	g.Level = LevelFromExp(g.TotalExp)
	g.OldStage = StageOf(g.OldLevel)
	g.Stage = StageOf(g.Level)
	g.LeveledUp = g.Level > g.OldLevel
	g.Matured = g.Stage >= StageMature && g.OldStage < StageMature
	return g
}

// NormalizePetName trims name and enforces 1..MaxPetNameLength characters.
// A nil name yields DefaultPetName.
func NormalizePetName(name *string) (string, error) {
	if name == nil {
		return DefaultPetName, nil
	}
	trimmed := strings.TrimSpace(*name)
	if n := utf8.RuneCountInString(trimmed); n == 0 || n > MaxPetNameLength {
		return "", common.Validation("name must be 1 to %d characters", MaxPetNameLength)
	}
	return trimmed, nil
}
