package progression

import "math"

// RewardCycleLength is the number of days in the daily reward calendar.
const RewardCycleLength = 14

var dailyRewards = [RewardCycleLength]int64{
	200, 200, 200, 200, 200, 200, 500,
	200, 200, 200, 200, 200, 200, 1000,
}

// RewardFor returns the base EXP of a calendar day (1-based).
func RewardFor(day int) int64 {
	if day < 1 || day > RewardCycleLength {
		return 0
	}
	return dailyRewards[day-1]
}

// IsBigRewardDay marks the end of each week of the cycle.
func IsBigRewardDay(day int) bool {
	return day == 7 || day == RewardCycleLength
}

// NextRewardDay follows the last claimed day, wrapping after the final day.
// Zero means nothing was ever claimed.
func NextRewardDay(lastClaimed int) int {
	if lastClaimed <= 0 || lastClaimed >= RewardCycleLength {
		return 1
	}
	return lastClaimed + 1
}

// Boost applies the combined streak multiplier to a base amount.
func Boost(base int64, m Multipliers) int64 {
	return int64(math.Round(float64(base) * m.Combined()))
}
