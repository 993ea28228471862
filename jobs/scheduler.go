// Package jobs runs the periodic maintenance of the progression engine.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// StreakSweeper zeroes streaks that can no longer be continued.
type StreakSweeper interface {
	SweepStale(ctx context.Context) (int, error)
}

// EventPruner drops event history older than a cutoff.
type EventPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds the cron specs. An empty spec disables that job, as does a
// zero Retention for pruning.
type Config struct {
	Location      *time.Location
	SweepSchedule string
	PruneSchedule string
	Retention     time.Duration
}

// Scheduler owns the background jobs.
type Scheduler struct {
	cron    *cron.Cron
	cfg     Config
	streaks StreakSweeper
	events  EventPruner
	now     func() time.Time
}

func NewScheduler(cfg Config, streaks StreakSweeper, events EventPruner) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(cfg.Location)),
		cfg:     cfg,
		streaks: streaks,
		events:  events,
		now:     time.Now,
	}
}

// Start registers the jobs and starts the cron loop. ctx bounds every run.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.SweepSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, func() { s.SweepStreaks(ctx) }); err != nil {
			return fmt.Errorf("schedule streak sweep: %w", err)
		}
	}
	if s.cfg.PruneSchedule != "" && s.cfg.Retention > 0 {
		if _, err := s.cron.AddFunc(s.cfg.PruneSchedule, func() { s.PruneEvents(ctx) }); err != nil {
			return fmt.Errorf("schedule event prune: %w", err)
		}
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"location": s.cfg.Location.String(),
		"jobs":     len(s.cron.Entries()),
	}).Info("⏰ Scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}

func (s *Scheduler) SweepStreaks(ctx context.Context) {
	start := s.now()
	swept, err := s.streaks.SweepStale(ctx)
	entry := log.WithFields(log.Fields{"job": "streak_sweep", "swept": swept, "took": s.now().Sub(start)})
	if err != nil {
		entry.WithError(err).Error("[CRON] streak sweep failed")
		return
	}
	entry.Info("[CRON] streak sweep done")
}

func (s *Scheduler) PruneEvents(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.Retention)
	n, err := s.events.Prune(ctx, cutoff)
	entry := log.WithFields(log.Fields{"job": "event_prune", "deleted": n, "cutoff": cutoff.Format(time.RFC3339)})
	if err != nil {
		entry.WithError(err).Error("[CRON] event prune failed")
		return
	}
	entry.Info("[CRON] event prune done")
}
