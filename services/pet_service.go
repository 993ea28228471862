package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fithub/common"
	"fithub/models"
	"fithub/progression"
)

type PetService struct {
	db       *gorm.DB
	locks    *UserLocker
	calendar progression.Calendar
	unlocks  *UnlockService
}

func NewPetService(db *gorm.DB, locks *UserLocker, cal progression.Calendar, unlocks *UnlockService) *PetService {
	return &PetService{db: db, locks: locks, calendar: cal, unlocks: unlocks}
}

// PetView is a pet with every derived attribute filled in.
type PetView struct {
	ID              uint                  `json:"id"`
	Name            string                `json:"name"`
	CompanionTypeID uint                  `json:"companion_type_id"`
	Stage           int                   `json:"stage"`
	StageName       string                `json:"stage_name"`
	Level           int                   `json:"level"`
	TotalExp        int64                 `json:"total_exp"`
	ExpToNextLevel  int64                 `json:"exp_to_next_level"`
	LevelProgress   float64               `json:"level_progress"`
	MoodScore       int                   `json:"mood_score"`
	MoodLabel       string                `json:"mood_label"`
	ImageURL        string                `json:"image_url"`
	IsActive        bool                  `json:"is_active"`
	CompanionType   *models.CompanionType `json:"companion_type,omitempty"`
}

// CompanionStatus is a companion type as seen by one user.
type CompanionStatus struct {
	models.CompanionType
	Unlocked       bool   `json:"unlocked"`
	Owned          bool   `json:"owned"`
	UnlockProgress string `json:"unlock_progress"`
}

// Barn is everything behind GET /api/pet/barn.
type Barn struct {
	ActivePet     *PetView          `json:"active_pet"`
	OwnedPets     []PetView         `json:"owned_pets"`
	UnlockedTypes []CompanionStatus `json:"unlocked_types"`
	LockedTypes   []CompanionStatus `json:"locked_types"`
}

// ForwardResult reports what an EXP delta did to the active pet.
type ForwardResult struct {
	HasPet bool
	PetID  uint
	Growth progression.Growth
}

// view derives the presentation of p and rewrites the cached columns when
// they have drifted from TotalExp or the current mood.
func (s *PetService) view(tx *gorm.DB, p *models.Pet, lastTraining progression.Date) (PetView, error) {
	level := progression.LevelFromExp(p.TotalExp)
	stage := progression.StageOf(level)
	mood := progression.Mood(lastTraining, s.calendar.Today())

	if p.Level != level || p.Stage != stage || p.MoodScore != mood {
		p.Level, p.Stage, p.MoodScore = level, stage, mood
		if err := tx.Model(p).Updates(map[string]any{
			"level":      level,
			"stage":      stage,
			"mood_score": mood,
		}).Error; err != nil {
			return PetView{}, fmt.Errorf("refresh pet cache: %w", err)
		}
	}

	v := PetView{
		ID:              p.ID,
		Name:            p.Name,
		CompanionTypeID: p.CompanionTypeID,
		Stage:           stage,
		StageName:       progression.StageName(stage),
		Level:           level,
		TotalExp:        p.TotalExp,
		ExpToNextLevel:  progression.ExpRemaining(p.TotalExp, level),
		LevelProgress:   progression.LevelProgress(p.TotalExp, level),
		MoodScore:       mood,
		MoodLabel:       progression.MoodLabel(mood),
		IsActive:        p.IsActive,
		CompanionType:   p.CompanionType,
	}
	if p.CompanionType != nil {
		v.ImageURL = p.CompanionType.Images().For(stage)
	}
	return v, nil
}

func (s *PetService) loadActive(tx *gorm.DB, userID uint, forUpdate bool) (*models.Pet, error) {
	q := tx
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p models.Pet
	err := q.Where("user_id = ? AND is_active = ?", userID, true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active pet: %w", err)
	}
	return &p, nil
}

func (s *PetService) loadOwned(tx *gorm.DB, userID, petID uint) (*models.Pet, error) {
	var p models.Pet
	err := tx.Preload("CompanionType").Where("id = ? AND user_id = ?", petID, userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NotFound("pet")
	}
	if err != nil {
		return nil, fmt.Errorf("load pet: %w", err)
	}
	return &p, nil
}

// growPet applies delta to p and persists the derived columns.
func growPet(tx *gorm.DB, p *models.Pet, delta int64) (progression.Growth, error) {
	g := progression.Grow(p.TotalExp, delta)
	p.TotalExp, p.Level, p.Stage = g.TotalExp, g.Level, g.Stage
	err := tx.Model(p).Updates(map[string]any{
		"total_exp":  g.TotalExp,
		"level":      g.Level,
		"stage":      g.Stage,
		"updated_at": time.Now().UTC(),
	}).Error
	if err != nil {
		return g, fmt.Errorf("update pet: %w", err)
	}
	return g, nil
}

// forwardExp feeds a credited delta to the active pet in its own
// transaction. The caller holds the user's lock.
func (s *PetService) forwardExp(userID uint, delta int64) (ForwardResult, error) {
	var res ForwardResult
	if delta == 0 {
		return res, nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.loadActive(tx, userID, true)
		if err != nil || p == nil {
			return err
		}
		g, err := growPet(tx, p, delta)
		if err != nil {
			return err
		}
		res = ForwardResult{HasPet: true, PetID: p.ID, Growth: g}
		return nil
	})
	return res, err
}

// debitActive removes EXP from the active pet inside the caller's
// transaction. No active pet is not an error.
func (s *PetService) debitActive(tx *gorm.DB, userID uint, amount int64) error {
	if amount <= 0 {
		return nil
	}
	p, err := s.loadActive(tx, userID, true)
	if err != nil || p == nil {
		return err
	}
	_, err = growPet(tx, p, -amount)
	return err
}

// Active returns the active pet, or nil when the user has none.
func (s *PetService) Active(userID uint) (*PetView, error) {
	var out *PetView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, userID); err != nil {
			return err
		}
		var p models.Pet
		err := tx.Preload("CompanionType").
			Where("user_id = ? AND is_active = ?", userID, true).
			First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load active pet: %w", err)
		}
		last, err := lastTrainingDay(tx, userID)
		if err != nil {
			return err
		}
		v, err := s.view(tx, &p, last)
		if err != nil {
			return err
		}
		out = &v
		return nil
	})
	return out, err
}

// Types lists active companion types with the user's unlock status.
func (s *PetService) Types(userID uint) ([]CompanionStatus, error) {
	var out []CompanionStatus
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, userID); err != nil {
			return err
		}
		var err error
		out, err = s.statuses(tx, userID)
		return err
	})
	return out, err
}

func (s *PetService) statuses(tx *gorm.DB, userID uint) ([]CompanionStatus, error) {
	types, _, err := activeRules(tx)
	if err != nil {
		return nil, err
	}
	st, err := s.unlocks.state(tx, userID)
	if err != nil {
		return nil, err
	}
	var owned []uint
	if err := tx.Model(&models.Pet{}).Where("user_id = ?", userID).Pluck("companion_type_id", &owned).Error; err != nil {
		return nil, fmt.Errorf("load owned types: %w", err)
	}
	ownedSet := make(map[uint]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}

	out := make([]CompanionStatus, 0, len(types))
	for _, ct := range types {
		rule := ct.Rule()
		cs := CompanionStatus{
			CompanionType: ct,
			Unlocked:      rule.IsUnlocked(st),
			Owned:         ownedSet[ct.ID],
		}
		if cs.Unlocked {
			cs.UnlockProgress = "Unlocked"
		} else {
			cs.UnlockProgress = progression.UnlockProgress(rule, st)
		}
		out = append(out, cs)
	}
	return out, nil
}

// Barn returns the active pet, all owned pets and the companion types split
// into unlocked-but-not-owned and locked.
func (s *PetService) Barn(userID uint) (Barn, error) {
	barn := Barn{OwnedPets: []PetView{}, UnlockedTypes: []CompanionStatus{}, LockedTypes: []CompanionStatus{}}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, userID); err != nil {
			return err
		}
		last, err := lastTrainingDay(tx, userID)
		if err != nil {
			return err
		}

		var pets []models.Pet
		if err := tx.Preload("CompanionType").Where("user_id = ?", userID).Order("id ASC").Find(&pets).Error; err != nil {
			return fmt.Errorf("load pets: %w", err)
		}
		for i := range pets {
			v, err := s.view(tx, &pets[i], last)
			if err != nil {
				return err
			}
			barn.OwnedPets = append(barn.OwnedPets, v)
			if v.IsActive {
				active := v
				barn.ActivePet = &active
			}
		}

		statuses, err := s.statuses(tx, userID)
		if err != nil {
			return err
		}
		for _, cs := range statuses {
			switch {
			case cs.Owned:
			case cs.Unlocked:
				barn.UnlockedTypes = append(barn.UnlockedTypes, cs)
			default:
				barn.LockedTypes = append(barn.LockedTypes, cs)
			}
		}
		return nil
	})
	return barn, err
}

// Adopt creates a pet of an unlocked companion type and makes it the active
// one.
func (s *PetService) Adopt(userID, companionTypeID uint, name *string) (PetView, error) {
	petName, err := progression.NormalizePetName(name)
	if err != nil {
		return PetView{}, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var out PetView
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockAccount(tx, userID); err != nil {
			return err
		}

		var ct models.CompanionType
		err := tx.Where("id = ? AND is_active = ?", companionTypeID, true).First(&ct).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFound("companion type")
		}
		if err != nil {
			return fmt.Errorf("load companion type: %w", err)
		}

		st, err := s.unlocks.state(tx, userID)
		if err != nil {
			return err
		}
		if !ct.Rule().IsUnlocked(st) {
			return common.Conflict("%s is not unlocked yet: %s", ct.Name, progression.UnlockProgress(ct.Rule(), st))
		}

		var owned int64
		if err := tx.Model(&models.Pet{}).
			Where("user_id = ? AND companion_type_id = ?", userID, ct.ID).
			Count(&owned).Error; err != nil {
			return fmt.Errorf("check owned pets: %w", err)
		}
		if owned > 0 {
			return common.Conflict("you already own a %s", ct.Name)
		}

		if err := tx.Model(&models.Pet{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivate pets: %w", err)
		}

		last, err := lastTrainingDay(tx, userID)
		if err != nil {
			return err
		}
		p := models.Pet{
			UserID:          userID,
			CompanionTypeID: ct.ID,
			Name:            petName,
			Stage:           progression.StageEgg,
			Level:           1,
			MoodScore:       progression.Mood(last, s.calendar.Today()),
			IsActive:        true,
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("create pet: %w", err)
		}
		p.CompanionType = &ct
		out, err = s.view(tx, &p, last)
		return err
	})
	return out, err
}

// Activate makes petID the user's only active pet.
func (s *PetService) Activate(userID, petID uint) (PetView, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var out PetView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockAccount(tx, userID); err != nil {
			return err
		}
		p, err := s.loadOwned(tx, userID, petID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Pet{}).
			Where("user_id = ? AND id <> ? AND is_active = ?", userID, p.ID, true).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivate pets: %w", err)
		}
		if !p.IsActive {
			if err := tx.Model(p).Update("is_active", true).Error; err != nil {
				return fmt.Errorf("activate pet: %w", err)
			}
			p.IsActive = true
		}
		last, err := lastTrainingDay(tx, userID)
		if err != nil {
			return err
		}
		out, err = s.view(tx, p, last)
		return err
	})
	return out, err
}

// Rename changes the name of one of the user's pets.
func (s *PetService) Rename(userID, petID uint, name string) (PetView, error) {
	petName, err := progression.NormalizePetName(&name)
	if err != nil {
		return PetView{}, err
	}
	return s.rename(userID, func(tx *gorm.DB) (*models.Pet, error) {
		return s.loadOwned(tx, userID, petID)
	}, petName)
}

// RenameActive renames the active pet.
func (s *PetService) RenameActive(userID uint, name string) (PetView, error) {
	petName, err := progression.NormalizePetName(&name)
	if err != nil {
		return PetView{}, err
	}
	return s.rename(userID, func(tx *gorm.DB) (*models.Pet, error) {
		p, err := s.loadActive(tx, userID, false)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, common.NotFound("active pet")
		}
		return s.loadOwned(tx, userID, p.ID)
	}, petName)
}

func (s *PetService) rename(userID uint, find func(tx *gorm.DB) (*models.Pet, error), name string) (PetView, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var out PetView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, userID); err != nil {
			return err
		}
		p, err := find(tx)
		if err != nil {
			return err
		}
		if err := tx.Model(p).Update("name", name).Error; err != nil {
			return fmt.Errorf("rename pet: %w", err)
		}
		p.Name = name
		last, err := lastTrainingDay(tx, userID)
		if err != nil {
			return err
		}
		out, err = s.view(tx, p, last)
		return err
	})
	return out, err
}

// Deactivate sends the active pet back to the barn. EXP and stage are
// untouched.
func (s *PetService) Deactivate(userID uint) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockAccount(tx, userID); err != nil {
			return err
		}
		p, err := s.loadActive(tx, userID, true)
		if err != nil {
			return err
		}
		if p == nil {
			return common.NotFound("active pet")
		}
		return tx.Model(p).Update("is_active", false).Error
	})
}
