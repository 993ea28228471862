// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fithub/models"
)

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.ProgressionAccount{},
		&models.UserSettings{},
		&models.Exercise{},
		&models.CustomExercise{},
		&models.TrainingRecord{},
		&models.TrainingRecordExercise{},
		&models.TrainingSet{},
		&models.UserStreak{},
		&models.LoginHistory{},
		&models.DailyRewardClaim{},
		&models.CompanionType{},
		&models.Pet{},
		&models.UserUnlock{},
		&models.ProgressionEvent{},
	}
}

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB) error {
	log.Info("🔄 Running database migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	createCoreIndexes(db)

	log.Info("✅ All migrations completed successfully")
	return nil
}

// createCoreIndexes adds read-path indexes that gorm tags cannot express.
func createCoreIndexes(db *gorm.DB) {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_accounts_level ON progression_accounts(level DESC)",
		"CREATE INDEX IF NOT EXISTS idx_records_user_recent ON training_records(user_id, record_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_pets_user_active ON pets(user_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_companions_order ON companion_types(display_order)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			log.WithError(err).Warn("could not create index")
		}
	}
}
