package services

import (
	"testing"

	"fithub/models"
	"fithub/progression"
)

func TestClaimLoginBonusOncePerDay(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "alice")
	env.svc.Pets.Adopt(uid, env.companionID(t, "shiba"), nil)

	first, err := env.svc.Rewards.ClaimLoginBonus(uid)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if first.AlreadyClaimed || first.ExpEarned != 110 || first.LoginStreak != 1 {
		t.Errorf("first claim = %+v", first)
	}

	again, err := env.svc.Rewards.ClaimLoginBonus(uid)
	if err != nil {
		t.Fatalf("claim again: %v", err)
	}
	if !again.AlreadyClaimed || again.ExpEarned != 0 || again.TotalExp != 110 {
		t.Errorf("second claim = %+v", again)
	}

	env.clock.advanceDays(1)
	next, _ := env.svc.Rewards.ClaimLoginBonus(uid)
	if next.ExpEarned != 120 || next.LoginStreak != 2 {
		t.Errorf("next day = %+v", next)
	}

	if got := env.account(t, uid).TotalExp; got != 230 {
		t.Errorf("account = %d, want 230", got)
	}
	pet, _ := env.svc.Pets.Active(uid)
	if pet.TotalExp != 230 {
		t.Errorf("pet = %d, want 230", pet.TotalExp)
	}
}

func TestRecordLoginThenBonusSameDay(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "bob")
	env.svc.Streaks.RecordLogin(uid)

	res, err := env.svc.Rewards.ClaimLoginBonus(uid)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if res.AlreadyClaimed || res.ExpEarned != 110 {
		t.Errorf("bonus after plain login = %+v", res)
	}
}

func TestClaimDailyCycle(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "carol")

	res, err := env.svc.Rewards.ClaimDaily(uid)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if res.RewardDay != 1 || res.ExpEarned != 200 {
		t.Errorf("day one = %+v", res)
	}
	again, _ := env.svc.Rewards.ClaimDaily(uid)
	if !again.AlreadyClaimed || again.ExpEarned != 0 || again.RewardDay != 1 {
		t.Errorf("repeat claim = %+v", again)
	}

	env.clock.advanceDays(1)
	res, _ = env.svc.Rewards.ClaimDaily(uid)
	if res.RewardDay != 2 {
		t.Errorf("day two = %+v", res)
	}

	st, err := env.svc.Rewards.DailyStatus(uid)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.CurrentDay != 3 || !st.TodayClaimed || len(st.Days) != progression.RewardCycleLength {
		t.Errorf("status = %+v", st)
	}
	if !st.Days[0].Claimed || !st.Days[1].Claimed || st.Days[2].Claimed {
		t.Errorf("claimed flags = %+v", st.Days[:3])
	}
	if !st.Days[6].IsBigReward || st.Days[13].Exp != 1000 {
		t.Errorf("big days = %+v %+v", st.Days[6], st.Days[13])
	}
}

func TestClaimDailyWrapsAfterFinalDay(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "dan")
	for day := 1; day <= progression.RewardCycleLength; day++ {
		env.db.Create(&models.DailyRewardClaim{
			UserID:    uid,
			ClaimDate: env.daysAgo(progression.RewardCycleLength - day + 1),
			RewardDay: day,
			ExpEarned: progression.RewardFor(day),
		})
	}

	st, _ := env.svc.Rewards.DailyStatus(uid)
	if st.CurrentDay != 1 || st.TodayClaimed {
		t.Errorf("status = %+v", st)
	}
	for _, d := range st.Days {
		if d.Claimed {
			t.Errorf("day %d shown as claimed after the cycle finished", d.Day)
		}
	}

	res, _ := env.svc.Rewards.ClaimDaily(uid)
	if res.RewardDay != 1 {
		t.Errorf("claimed day %d, want 1", res.RewardDay)
	}
}

func TestClaimDailyAppliesStreakMultiplier(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "eli")
	env.svc.Streaks.RecordLogin(uid)

	res, err := env.svc.Rewards.ClaimDaily(uid)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	// 200 x (1 + 0.07)
	if res.ExpEarned != 214 || res.BaseExp != 200 {
		t.Errorf("claim = %+v", res)
	}
}
