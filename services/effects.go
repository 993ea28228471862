package services

import (
	log "github.com/sirupsen/logrus"

	"fithub/models"
)

// EffectsResult summarises the best-effort work done after a credit.
type EffectsResult struct {
	PetMatured bool
	Unlocked   []UnlockedCompanion
}

// creditEffects runs the secondary effects of an EXP credit once the primary
// transaction has committed. Nothing here can fail the caller.
type creditEffects struct {
	pets    *PetService
	unlocks *UnlockService
	events  *EventHub
}

func (fx *creditEffects) apply(userID uint, ch AccountChange, source string) EffectsResult {
	var res EffectsResult
	logger := log.WithFields(log.Fields{"user_id": userID, "source": source})

	if ch.Delta > 0 {
		fx.events.Publish(userID, NewEvent(models.EventExpCredited, map[string]any{
			"source":    source,
			"amount":    ch.Delta,
			"total_exp": ch.TotalExp,
			"level":     ch.Level,
		}))
	}
	if ch.LeveledUp {
		logger.WithField("level", ch.Level).Info("🎉 Level up")
		fx.events.Publish(userID, NewEvent(models.EventLevelUp, map[string]any{
			"old_level": ch.OldLevel,
			"level":     ch.Level,
		}))
	}

	fwd, err := fx.pets.forwardExp(userID, ch.Delta)
	if err != nil {
		logger.WithError(err).WithField("step", "pet_forward").Warn("secondary effect failed")
	} else if fwd.HasPet && fwd.Growth.Matured {
		res.PetMatured = true
		fx.events.Publish(userID, NewEvent(models.EventPetMatured, map[string]any{
			"pet_id": fwd.PetID,
			"level":  fwd.Growth.Level,
		}))
	}

	if ch.LeveledUp || res.PetMatured {
		unlocked, err := fx.unlocks.Evaluate(userID)
		if err != nil {
			logger.WithError(err).WithField("step", "unlock_evaluation").Warn("secondary effect failed")
		}
		res.Unlocked = unlocked
	}
	return res
}
