package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fithub/models"
)

const subscriberBufferSize = 64

// Event is one progression notification as delivered to clients.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewEvent(typ string, payload map[string]any) Event {
	return Event{Type: typ, Payload: payload}
}

// Subscription receives the events of one user until it is closed.
type Subscription struct {
	C      <-chan Event
	send   chan Event
	userID uint
	hub    *EventHub
	once   sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
	})
}

// EventHub persists progression events and fans them out to live
// subscribers. Delivery is best effort: a slow subscriber loses events rather
// than blocking a mutation.
type EventHub struct {
	db   *gorm.DB
	mu   sync.RWMutex
	subs map[uint]map[*Subscription]struct{}
}

func NewEventHub(db *gorm.DB) *EventHub {
	return &EventHub{db: db, subs: make(map[uint]map[*Subscription]struct{})}
}

func (h *EventHub) Subscribe(userID uint) *Subscription {
	ch := make(chan Event, subscriberBufferSize)
	sub := &Subscription{C: ch, send: ch, userID: userID, hub: h}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *EventHub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.userID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.userID)
		}
	}
	close(sub.send)
}

// Publish stores the event and hands it to every subscriber of userID.
// Failures are logged and never returned; the mutation that produced the
// event has already committed.
func (h *EventHub) Publish(userID uint, ev Event) {
	ev.ID = uuid.NewString()
	ev.OccurredAt = time.Now().UTC()

	if err := h.persist(userID, ev); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"type":    ev.Type,
		}).Warn("failed to persist progression event")
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[userID] {
		select {
		case sub.send <- ev:
		default:
			log.WithFields(log.Fields{
				"user_id": userID,
				"type":    ev.Type,
			}).Warn("⚠️ Event buffer full, dropping event")
		}
	}
}

func (h *EventHub) persist(userID uint, ev Event) error {
	raw, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	row := models.ProgressionEvent{
		ID:         ev.ID,
		UserID:     userID,
		Type:       ev.Type,
		Payload:    datatypes.JSON(raw),
		OccurredAt: ev.OccurredAt,
	}
	return h.db.Create(&row).Error
}

// Recent returns the user's latest events, newest first.
func (h *EventHub) Recent(userID uint, limit int) ([]Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []models.ProgressionEvent
	if err := h.db.Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	out := make([]Event, 0, len(rows))
	for _, r := range rows {
		ev := Event{ID: r.ID, Type: r.Type, OccurredAt: r.OccurredAt}
		if len(r.Payload) > 0 {
			if err := json.Unmarshal(r.Payload, &ev.Payload); err != nil {
				log.WithError(err).WithField("event_id", r.ID).Warn("skipping undecodable event payload")
				continue
			}
		}
		out = append(out, ev)
	}
	return out, nil
}

// Prune deletes persisted events that occurred before cutoff.
func (h *EventHub) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res := h.db.WithContext(ctx).Where("occurred_at < ?", cutoff).Delete(&models.ProgressionEvent{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune events: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (h *EventHub) subscriberCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
