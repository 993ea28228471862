package progression

import "fmt"

// Unlock rule kinds.
const (
	UnlockDefault   = "default"
	UnlockUserLevel = "user_level"
	UnlockPetGrowth = "pet_growth"
)

// ValidUnlockType reports whether t is a known rule kind.
func ValidUnlockType(t string) bool {
	switch t {
	case UnlockDefault, UnlockUserLevel, UnlockPetGrowth:
		return true
	}
	return false
}

// UnlockRule is the gating data of one companion type.
type UnlockRule struct {
	CompanionTypeID uint
	Code            string
	Name            string
	Type            string
	Level           int
	PetCode         string
	Starter         bool
}

// PreUnlocked rules never need a stored unlock.
func (r UnlockRule) PreUnlocked() bool {
	return r.Starter || r.Type == UnlockDefault || r.Type == ""
}

// UnlockState is what a user has achieved so far.
type UnlockState struct {
	UserLevel int
	// MatureCodes holds companion codes for which the user owns a mature pet.
	MatureCodes map[string]bool
	// Unlocked holds companion type ids already recorded as unlocked.
	Unlocked map[uint]bool
}

func (r UnlockRule) requiredLevel() int {
	if r.Level < 1 {
		return 1
	}
	return r.Level
}

// Satisfied evaluates the predicate. Unknown kinds are never satisfied.
func (r UnlockRule) Satisfied(st UnlockState) bool {
	switch r.Type {
	case UnlockUserLevel:
		return st.UserLevel >= r.requiredLevel()
	case UnlockPetGrowth:
		return st.MatureCodes[r.PetCode]
	case UnlockDefault, "":
		return true
	default:
		return false
	}
}

// IsUnlocked reports whether the user may adopt the companion right now.
func (r UnlockRule) IsUnlocked(st UnlockState) bool {
	return r.PreUnlocked() || st.Unlocked[r.CompanionTypeID]
}

// NewlyUnlocked returns the rules that should be recorded as unlocked: not
// starters, not yet unlocked, predicate satisfied.
func NewlyUnlocked(rules []UnlockRule, st UnlockState) []UnlockRule {
	var out []UnlockRule
	for _, r := range rules {
		if r.Starter || st.Unlocked[r.CompanionTypeID] {
			continue
		}
		if r.Satisfied(st) {
			out = append(out, r)
		}
	}
	return out
}

// UnlockProgress is the human readable status shown for a locked companion.
func UnlockProgress(r UnlockRule, st UnlockState) string {
	switch r.Type {
	case UnlockUserLevel:
		if st.UserLevel >= r.requiredLevel() {
			return "Unlockable"
		}
		return fmt.Sprintf("Unlocks at user Lv.%d (current Lv.%d)", r.requiredLevel(), st.UserLevel)
	case UnlockPetGrowth:
		if st.MatureCodes[r.PetCode] {
			return "Unlockable"
		}
		return fmt.Sprintf("Raise %s to mature stage (Lv.31+) to unlock", r.PetCode)
	default:
		return "Unlockable"
	}
}
