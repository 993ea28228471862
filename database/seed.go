// database/seed.go - Master data (exercise catalog and companion types)
package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fithub/models"
	"fithub/progression"
)

// Catalog is the importable shape of master data.
type Catalog struct {
	Exercises      []models.Exercise      `json:"exercises"`
	CompanionTypes []models.CompanionType `json:"companion_types"`
}

// DefaultCatalog is loaded on first start so a fresh install is usable.
func DefaultCatalog() Catalog {
	return Catalog{
		Exercises: []models.Exercise{
			{Name: "Bench Press", MuscleGroup: "chest", Difficulty: "medium"},
			{Name: "Push-up", MuscleGroup: "chest", Difficulty: "easy"},
			{Name: "Back Squat", MuscleGroup: "legs", Difficulty: "hard"},
			{Name: "Deadlift", MuscleGroup: "back", Difficulty: "hard"},
			{Name: "Lat Pulldown", MuscleGroup: "back", Difficulty: "easy"},
			{Name: "Overhead Press", MuscleGroup: "shoulders", Difficulty: "medium"},
			{Name: "Barbell Curl", MuscleGroup: "arms", Difficulty: "easy"},
			{Name: "Leg Press", MuscleGroup: "legs", Difficulty: "medium"},
		},
		CompanionTypes: []models.CompanionType{
			{Code: "shiba", Name: "Shiba", UnlockType: progression.UnlockDefault, IsStarter: true, IsActive: true, DisplayOrder: 1,
				ImageEgg: "/images/pets/shiba_egg.png", ImageChild: "/images/pets/shiba_child.png", ImageAdult: "/images/pets/shiba_adult.png"},
			{Code: "cat", Name: "Cat", UnlockType: progression.UnlockDefault, IsStarter: true, IsActive: true, DisplayOrder: 2,
				ImageEgg: "/images/pets/cat_egg.png", ImageChild: "/images/pets/cat_child.png", ImageAdult: "/images/pets/cat_adult.png"},
			{Code: "wolf", Name: "Wolf", UnlockType: progression.UnlockUserLevel, UnlockLevel: 10, IsActive: true, DisplayOrder: 3,
				ImageEgg: "/images/pets/wolf_egg.png", ImageChild: "/images/pets/wolf_child.png", ImageAdult: "/images/pets/wolf_adult.png"},
			{Code: "dragon", Name: "Dragon", UnlockType: progression.UnlockPetGrowth, UnlockPetCode: "wolf", IsActive: true, DisplayOrder: 4,
				ImageEgg: "/images/pets/dragon_egg.png", ImageChild: "/images/pets/dragon_child.png", ImageAdult: "/images/pets/dragon_adult.png"},
		},
	}
}

// SeedDefaults loads DefaultCatalog into empty catalog tables.
func SeedDefaults(db *gorm.DB) error {
	var exercises, companions int64
	if err := db.Model(&models.Exercise{}).Count(&exercises).Error; err != nil {
		return err
	}
	if err := db.Model(&models.CompanionType{}).Count(&companions).Error; err != nil {
		return err
	}
	if exercises > 0 && companions > 0 {
		return nil
	}

	def := DefaultCatalog()
	if exercises > 0 {
		def.Exercises = nil
	}
	if companions > 0 {
		def.CompanionTypes = nil
	}
	n, err := UpsertCatalog(db, def)
	if err != nil {
		return err
	}
	log.WithField("rows", n).Info("🌱 Seeded default catalog")
	return nil
}

// ValidateCatalog checks what the database cannot: names and codes are set
// and every unlock type is known.
func ValidateCatalog(c Catalog) error {
	for _, ex := range c.Exercises {
		if ex.Name == "" {
			return fmt.Errorf("exercise without a name")
		}
	}
	for _, ct := range c.CompanionTypes {
		if ct.Code == "" {
			return fmt.Errorf("companion type %q has no code", ct.Name)
		}
		if !progression.ValidUnlockType(ct.UnlockType) {
			return fmt.Errorf("companion type %s: unknown unlock type %q", ct.Code, ct.UnlockType)
		}
	}
	return nil
}

// UpsertCatalog inserts or updates exercises by name and companion types by
// code in a single transaction. It returns the number of rows written.
func UpsertCatalog(db *gorm.DB, c Catalog) (int, error) {
	if err := ValidateCatalog(c); err != nil {
		return 0, err
	}

	written := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range c.Exercises {
			ex := c.Exercises[i]
			ex.ID = 0
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"muscle_group", "difficulty"}),
			}).Create(&ex).Error; err != nil {
				return fmt.Errorf("upsert exercise %s: %w", ex.Name, err)
			}
			written++
		}
		for i := range c.CompanionTypes {
			ct := c.CompanionTypes[i]
			ct.ID = 0
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "description", "image_egg", "image_child", "image_adult", "background_image",
					"unlock_type", "unlock_level", "unlock_pet_code", "is_starter", "is_active", "display_order", "updated_at",
				}),
			}).Create(&ct).Error; err != nil {
				return fmt.Errorf("upsert companion type %s: %w", ct.Code, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
