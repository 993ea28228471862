package services

import (
	"context"
	"testing"
	"time"

	"fithub/models"
)

func TestEventHubDeliversAndPersists(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "alice")
	other := env.register(t, "bob")

	sub := env.svc.Events.Subscribe(uid)
	defer sub.Close()
	otherSub := env.svc.Events.Subscribe(other)
	defer otherSub.Close()

	env.svc.Events.Publish(uid, NewEvent(models.EventLevelUp, map[string]any{"level": 2}))

	select {
	case ev := <-sub.C:
		if ev.Type != models.EventLevelUp || ev.ID == "" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	select {
	case ev := <-otherSub.C:
		t.Errorf("event leaked to another user: %+v", ev)
	default:
	}

	recent, err := env.svc.Events.Recent(uid, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Payload["level"] != float64(2) {
		t.Errorf("recent = %+v", recent)
	}
}

func TestEventHubDropsWhenSubscriberIsSlow(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "carl")
	sub := env.svc.Events.Subscribe(uid)

	for i := 0; i < subscriberBufferSize+5; i++ {
		env.svc.Events.Publish(uid, NewEvent(models.EventExpCredited, map[string]any{"i": i}))
	}
	if got := len(sub.C); got != subscriberBufferSize {
		t.Errorf("buffered %d events, want %d", got, subscriberBufferSize)
	}

	sub.Close()
	sub.Close()
	if n := env.svc.Events.subscriberCount(uid); n != 0 {
		t.Errorf("%d subscribers after close", n)
	}
}

func TestEventHubPrune(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "alice")

	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{cutoff.Add(-48 * time.Hour), cutoff.Add(-time.Minute), cutoff.Add(time.Hour)} {
		row := models.ProgressionEvent{
			ID:         string(rune('a' + i)),
			UserID:     uid,
			Type:       models.EventExpCredited,
			OccurredAt: at,
		}
		if err := env.db.Create(&row).Error; err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}

	n, err := env.svc.Events.Prune(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d, want 2", n)
	}
	var left int64
	env.db.Model(&models.ProgressionEvent{}).Count(&left)
	if left != 1 {
		t.Errorf("%d events left, want 1", left)
	}
}
