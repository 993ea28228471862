// Package progression is the pure rule set behind FitHub's economy: the level
// curve, EXP accrual for logged sets, streak transitions, pet growth and the
// companion unlock predicates. Nothing in here touches storage.
package progression

// MaxLevel caps levelFromExp regardless of how much EXP is banked.
const MaxLevel = 1000

// RequiredExp returns the cumulative EXP needed to reach level.
// R(L) = 40L² + 100L - 140 for L > 1, R(1) = 0.
func RequiredExp(level int) int64 {
	if level <= 1 {
		return 0
	}
	l := int64(level)
	return 40*l*l + 100*l - 140
}

// ExpToNextLevel is the width of the band between level and level+1.
func ExpToNextLevel(level int) int64 {
	return RequiredExp(level+1) - RequiredExp(level)
}

// ExpRemaining is the EXP still missing before level+1, never negative.
func ExpRemaining(totalExp int64, level int) int64 {
	return max(RequiredExp(level+1)-totalExp, 0)
}

// LevelFromExp returns the largest level in 1..MaxLevel whose threshold does
// not exceed totalExp.
func LevelFromExp(totalExp int64) int {
	if totalExp <= 0 {
		return 1
	}
	lo, hi := 1, MaxLevel
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if RequiredExp(mid) <= totalExp {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// LevelProgress is the fraction of the current band already earned.
func LevelProgress(totalExp int64, level int) float64 {
	need := ExpToNextLevel(level)
	if need <= 0 {
		return 1.0
	}
	p := float64(totalExp-RequiredExp(level)) / float64(need)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// ApplyDelta adds delta to a balance and floors the result at zero.
func ApplyDelta(total, delta int64) int64 {
	total += delta
	if total < 0 {
		return 0
	}
	return total
}
