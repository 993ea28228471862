// models/workout.go
package models

import "time"

// Exercise is a catalog entry. Difficulty accepts hard/medium/easy or the
// Japanese labels 上級/中級/初級.
type Exercise struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	MuscleGroup string    `gorm:"size:50;index" json:"muscle_group"`
	Difficulty  string    `gorm:"size:20" json:"difficulty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CustomExercise struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TrainingRecord groups a user's sets for one calendar day. Later saves for
// the same day append to it and ExpEarned accumulates.
type TrainingRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_records_user_date" json:"user_id"`
	RecordDate string    `gorm:"not null;size:10;uniqueIndex:idx_records_user_date" json:"record_date"`
	ExpEarned  int64     `gorm:"not null" json:"exp_earned"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Exercises []TrainingRecordExercise `gorm:"foreignKey:RecordID" json:"exercises,omitempty"`
}

type TrainingRecordExercise struct {
	ID               uint  `gorm:"primaryKey" json:"id"`
	RecordID         uint  `gorm:"not null;index" json:"record_id"`
	ExerciseID       *uint `gorm:"index" json:"exercise_id,omitempty"`
	CustomExerciseID *uint `gorm:"index" json:"custom_exercise_id,omitempty"`
	OrderIndex       int   `gorm:"not null" json:"order_index"`

	Exercise       *Exercise       `gorm:"foreignKey:ExerciseID" json:"exercise,omitempty"`
	CustomExercise *CustomExercise `gorm:"foreignKey:CustomExerciseID" json:"custom_exercise,omitempty"`
	Sets           []TrainingSet   `gorm:"foreignKey:RecordExerciseID" json:"sets,omitempty"`
}

type TrainingSet struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	RecordExerciseID uint    `gorm:"not null;index" json:"record_exercise_id"`
	SetNumber        int     `gorm:"not null" json:"set_number"`
	Weight           float64 `gorm:"not null" json:"weight"`
	Reps             int     `gorm:"not null" json:"reps"`
}
