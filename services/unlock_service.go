package services

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fithub/models"
	"fithub/progression"
)

type UnlockService struct {
	db     *gorm.DB
	events *EventHub
}

func NewUnlockService(db *gorm.DB, events *EventHub) *UnlockService {
	return &UnlockService{db: db, events: events}
}

// UnlockedCompanion names a companion type unlocked by an evaluation.
type UnlockedCompanion struct {
	CompanionTypeID uint   `json:"companion_type_id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
}

// state gathers what the unlock predicates look at.
func (s *UnlockService) state(tx *gorm.DB, userID uint) (progression.UnlockState, error) {
	st := progression.UnlockState{
		UserLevel:   1,
		MatureCodes: map[string]bool{},
		Unlocked:    map[uint]bool{},
	}

	var acc models.ProgressionAccount
	err := tx.Where("user_id = ?", userID).Limit(1).Find(&acc).Error
	if err != nil {
		return st, fmt.Errorf("load account: %w", err)
	}
	st.UserLevel = progression.LevelFromExp(acc.TotalExp)

	var pets []models.Pet
	if err := tx.Preload("CompanionType").Where("user_id = ?", userID).Find(&pets).Error; err != nil {
		return st, fmt.Errorf("load pets: %w", err)
	}
	for _, p := range pets {
		if p.CompanionType == nil {
			continue
		}
		if progression.StageOf(progression.LevelFromExp(p.TotalExp)) >= progression.StageMature {
			st.MatureCodes[p.CompanionType.Code] = true
		}
	}

	var ids []uint
	if err := tx.Model(&models.UserUnlock{}).Where("user_id = ?", userID).Pluck("companion_type_id", &ids).Error; err != nil {
		return st, fmt.Errorf("load unlocks: %w", err)
	}
	for _, id := range ids {
		st.Unlocked[id] = true
	}
	return st, nil
}

// activeRules lists the rules of every companion type still offered.
func activeRules(tx *gorm.DB) ([]models.CompanionType, []progression.UnlockRule, error) {
	var types []models.CompanionType
	if err := tx.Where("is_active = ?", true).Order("display_order ASC, id ASC").Find(&types).Error; err != nil {
		return nil, nil, fmt.Errorf("load companion types: %w", err)
	}
	rules := make([]progression.UnlockRule, len(types))
	for i, ct := range types {
		rules[i] = ct.Rule()
	}
	return types, rules, nil
}

// Evaluate records every companion whose rule the user now satisfies.
// Unlocks are never revoked, and running it twice inserts nothing new.
func (s *UnlockService) Evaluate(userID uint) ([]UnlockedCompanion, error) {
	var unlocked []UnlockedCompanion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, userID); err != nil {
			return err
		}
		st, err := s.state(tx, userID)
		if err != nil {
			return err
		}
		_, rules, err := activeRules(tx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, r := range progression.NewlyUnlocked(rules, st) {
			row := models.UserUnlock{UserID: userID, CompanionTypeID: r.CompanionTypeID, UnlockedAt: now}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return fmt.Errorf("record unlock of %s: %w", r.Code, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			unlocked = append(unlocked, UnlockedCompanion{CompanionTypeID: r.CompanionTypeID, Code: r.Code, Name: r.Name})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, u := range unlocked {
		log.WithFields(log.Fields{"user_id": userID, "companion": u.Code}).Info("🔓 Companion unlocked")
		s.events.Publish(userID, NewEvent(models.EventCompanionUnlocked, map[string]any{
			"companion_type_id": u.CompanionTypeID,
			"code":              u.Code,
			"name":              u.Name,
		}))
	}
	return unlocked, nil
}
