package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSweeper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSweeper) SweepStale(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 3, f.err
}

type fakePruner struct {
	cutoffs []time.Time
}

func (f *fakePruner) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return 7, nil
}

func TestStartRegistersConfiguredJobs(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"both", Config{SweepSchedule: "5 4 * * *", PruneSchedule: "30 4 * * *", Retention: time.Hour}, 2},
		{"sweep only", Config{SweepSchedule: "5 4 * * *"}, 1},
		{"prune without retention", Config{PruneSchedule: "30 4 * * *"}, 0},
		{"none", Config{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.cfg, &fakeSweeper{}, &fakePruner{})
			if err := s.Start(context.Background()); err != nil {
				t.Fatalf("Start: %v", err)
			}
			defer s.Stop()
			if got := len(s.cron.Entries()); got != tt.want {
				t.Errorf("entries = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewScheduler(Config{SweepSchedule: "not a cron spec"}, &fakeSweeper{}, &fakePruner{})
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected an error for an invalid spec")
	}
}

func TestSweepStreaksSurvivesErrors(t *testing.T) {
	sw := &fakeSweeper{err: errors.New("db down")}
	s := NewScheduler(Config{}, sw, &fakePruner{})
	s.SweepStreaks(context.Background())
	s.SweepStreaks(context.Background())
	if sw.calls != 2 {
		t.Errorf("calls = %d, want 2", sw.calls)
	}
}

func TestPruneEventsUsesRetention(t *testing.T) {
	now := time.Date(2025, 3, 10, 4, 30, 0, 0, time.UTC)
	pr := &fakePruner{}
	s := NewScheduler(Config{Retention: 48 * time.Hour}, &fakeSweeper{}, pr)
	s.now = func() time.Time { return now }

	s.PruneEvents(context.Background())
	if len(pr.cutoffs) != 1 {
		t.Fatalf("prune calls = %d, want 1", len(pr.cutoffs))
	}
	if want := now.Add(-48 * time.Hour); !pr.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", pr.cutoffs[0], want)
	}
}
