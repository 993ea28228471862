package services

import (
	"gorm.io/gorm"

	"fithub/progression"
)

// Options carries the tunables shared by all services.
type Options struct {
	Exp              progression.ExpConfig
	Calendar         progression.Calendar
	DefaultGraceDays int
}

// Services wires every use case over one database handle and one per-user
// lock table.
type Services struct {
	Users      *UserService
	Accounts   *AccountService
	Streaks    *StreakService
	Pets       *PetService
	Unlocks    *UnlockService
	Rewards    *RewardService
	Workouts   *WorkoutService
	Companions *CompanionService
	Events     *EventHub
	Locks      *UserLocker
}

func New(db *gorm.DB, opts Options) *Services {
	locks := NewUserLocker()
	events := NewEventHub(db)
	accounts := NewAccountService(db)
	streaks := NewStreakService(db, locks, opts.Calendar, opts.DefaultGraceDays, events)
	unlocks := NewUnlockService(db, events)
	pets := NewPetService(db, locks, opts.Calendar, unlocks)
	fx := &creditEffects{pets: pets, unlocks: unlocks, events: events}

	return &Services{
		Users:      NewUserService(db, opts.DefaultGraceDays),
		Accounts:   accounts,
		Streaks:    streaks,
		Pets:       pets,
		Unlocks:    unlocks,
		Rewards:    NewRewardService(db, locks, opts.Calendar, streaks, fx),
		Workouts:   NewWorkoutService(db, locks, opts.Exp, opts.Calendar, streaks, pets, fx),
		Companions: NewCompanionService(db),
		Events:     events,
		Locks:      locks,
	}
}
