package services

import (
	"context"
	"testing"

	"fithub/common"
	"fithub/progression"
)

func TestSettingsValidation(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "alice")

	got, err := env.svc.Streaks.GetSettings(uid)
	if err != nil || got != progression.DefaultGraceDays {
		t.Fatalf("default grace = %d, %v", got, err)
	}

	for _, bad := range []int{-1, 4} {
		if _, err := env.svc.Streaks.UpdateSettings(uid, bad); !common.IsValidation(err) {
			t.Errorf("grace %d: err = %v, want Validation", bad, err)
		}
	}
	for _, ok := range []int{0, 3} {
		if _, err := env.svc.Streaks.UpdateSettings(uid, ok); err != nil {
			t.Fatalf("grace %d: %v", ok, err)
		}
		got, _ := env.svc.Streaks.GetSettings(uid)
		if got != ok {
			t.Errorf("stored grace = %d, want %d", got, ok)
		}
	}

	if _, err := env.svc.Streaks.GetSettings(9999); !common.IsNotFound(err) {
		t.Errorf("unknown user: err = %v", err)
	}
}

func TestTrainingStreakUsesGraceDays(t *testing.T) {
	tests := []struct {
		name      string
		grace     int
		days      []int // days ago, oldest first
		wantCur   int
		wantGrace int
	}{
		{"one grace day consumed", 1, []int{3, 1}, 2, 1},
		{"gap too wide", 1, []int{4, 1}, 1, 0},
		{"no grace", 0, []int{3, 1}, 1, 0},
		{"same day twice", 1, []int{1, 1}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			uid := env.register(t, "runner")
			if _, err := env.svc.Streaks.UpdateSettings(uid, tt.grace); err != nil {
				t.Fatalf("settings: %v", err)
			}
			for _, d := range tt.days {
				if _, err := env.svc.Workouts.Save(uid, env.benchSet(t, env.daysAgo(d))); err != nil {
					t.Fatalf("save: %v", err)
				}
			}
			ov, err := env.svc.Streaks.Overview(uid)
			if err != nil {
				t.Fatalf("overview: %v", err)
			}
			if ov.Training.Current != tt.wantCur || ov.Training.GraceDaysUsed != tt.wantGrace {
				t.Errorf("training = %+v, want current=%d grace=%d", ov.Training, tt.wantCur, tt.wantGrace)
			}
			if ov.Training.GraceDaysAllowed != tt.grace {
				t.Errorf("allowed = %d", ov.Training.GraceDaysAllowed)
			}
		})
	}
}

func TestRecordLoginIsIdempotentPerDay(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "bob")

	for i := 0; i < 2; i++ {
		info, err := env.svc.Streaks.RecordLogin(uid)
		if err != nil {
			t.Fatalf("record login: %v", err)
		}
		if info.Current != 1 {
			t.Errorf("call %d: current = %d", i, info.Current)
		}
	}
	env.clock.advanceDays(1)
	info, _ := env.svc.Streaks.RecordLogin(uid)
	if info.Current != 2 || info.Best != 2 {
		t.Errorf("next day = %+v", info)
	}

	ov, _ := env.svc.Streaks.Overview(uid)
	if ov.LoginMultiplier != progression.LoginBonus(2) || ov.CombinedMultiplier != 1+progression.LoginBonus(2) {
		t.Errorf("multipliers = %+v", ov)
	}
}

func TestSweepStaleResetsCurrentOnly(t *testing.T) {
	env := newTestEnv(t)
	idle := env.register(t, "idle")
	busy := env.register(t, "busy")

	env.svc.Streaks.RecordLogin(idle)
	env.clock.advanceDays(1)
	env.svc.Streaks.RecordLogin(idle)
	env.clock.advanceDays(3)
	env.svc.Streaks.RecordLogin(busy)

	n, err := env.svc.Streaks.SweepStale(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("swept %d streaks, want 1", n)
	}

	ov, _ := env.svc.Streaks.Overview(idle)
	if ov.Login.Current != 0 || ov.Login.Best != 2 {
		t.Errorf("idle login streak = %+v", ov.Login)
	}
	ov, _ = env.svc.Streaks.Overview(busy)
	if ov.Login.Current != 1 {
		t.Errorf("busy login streak = %+v", ov.Login)
	}

	n, _ = env.svc.Streaks.SweepStale(context.Background())
	if n != 0 {
		t.Errorf("second sweep reset %d streaks", n)
	}
}

func TestSweepHonoursGraceDays(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "patient")
	env.svc.Streaks.UpdateSettings(uid, 3)
	env.svc.Streaks.RecordLogin(uid)
	env.clock.advanceDays(4)

	n, err := env.svc.Streaks.SweepStale(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("sweep = %d, %v; a 4 day gap is within 3 grace days", n, err)
	}
	info, _ := env.svc.Streaks.RecordLogin(uid)
	if info.Current != 2 || info.GraceDaysUsed != 3 {
		t.Errorf("login after grace = %+v", info)
	}
}
