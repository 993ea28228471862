package services

import (
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fithub/database"
	"fithub/models"
	"fithub/progression"
)

// testClock is a settable clock shared by every service of a test env.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advanceDays(n int) {
	c.mu.Lock()
	c.t = c.t.AddDate(0, 0, n)
	c.mu.Unlock()
}

type testEnv struct {
	db    *gorm.DB
	clock *testClock
	svc   *Services
}

// newTestEnv opens a private in-memory database with the production schema
// and default catalog. "Today" starts at 2025-03-10 in UTC.
func newTestEnv(t *testing.T, mutate ...func(*Options)) *testEnv {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.SeedDefaults(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clock := &testClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	opts := Options{
		Exp:              progression.DefaultExpConfig(),
		Calendar:         progression.NewCalendar(clock, time.UTC, 0),
		DefaultGraceDays: progression.DefaultGraceDays,
	}
	for _, m := range mutate {
		m(&opts)
	}
	return &testEnv{db: db, clock: clock, svc: New(db, opts)}
}

func (e *testEnv) register(t *testing.T, username string) uint {
	t.Helper()
	u, err := e.svc.Users.Register(username, "", "secret123")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u.ID
}

func (e *testEnv) companionID(t *testing.T, code string) uint {
	t.Helper()
	var ct models.CompanionType
	if err := e.db.Where("code = ?", code).First(&ct).Error; err != nil {
		t.Fatalf("companion %s: %v", code, err)
	}
	return ct.ID
}

func (e *testEnv) exerciseID(t *testing.T, name string) uint {
	t.Helper()
	var ex models.Exercise
	if err := e.db.Where("name = ?", name).First(&ex).Error; err != nil {
		t.Fatalf("exercise %s: %v", name, err)
	}
	return ex.ID
}

func (e *testEnv) account(t *testing.T, userID uint) models.ProgressionAccount {
	t.Helper()
	var acc models.ProgressionAccount
	if err := e.db.Where("user_id = ?", userID).First(&acc).Error; err != nil {
		t.Fatalf("account: %v", err)
	}
	return acc
}

func (e *testEnv) setTotalExp(t *testing.T, userID uint, total int64) {
	t.Helper()
	err := e.db.Model(&models.ProgressionAccount{}).Where("user_id = ?", userID).Updates(map[string]any{
		"total_exp": total,
		"level":     progression.LevelFromExp(total),
	}).Error
	if err != nil {
		t.Fatalf("set total exp: %v", err)
	}
}

func (e *testEnv) today() string {
	return e.svc.Streaks.calendar.Today().String()
}

func (e *testEnv) daysAgo(n int) string {
	return e.svc.Streaks.calendar.Today().AddDays(-n).String()
}

// benchSet is one Bench Press (medium, coefficient 20) set that hits the
// per-set cap of 2000 EXP.
func (e *testEnv) benchSet(t *testing.T, date string) SaveInput {
	return SaveInput{
		Date: date,
		Exercises: []ExerciseInput{{
			ExerciseID: e.exerciseID(t, "Bench Press"),
			Sets:       []SetInput{{Weight: 50, Reps: 10}},
		}},
	}
}
