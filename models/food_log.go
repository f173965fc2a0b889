package models

import (
	"time"

	"gorm.io/gorm"
)

// FoodLog is one consumption event. MealID is set when the entry came in
// through a meal; VoiceInput/AIResponse keep the raw provenance of
// AI-assisted entries.
type FoodLog struct {
	gorm.Model
	UserID      uint  `gorm:"index;not null"`
	FoodID      uint  `gorm:"not null"`
	Food        Food  `gorm:"foreignKey:FoodID"`
	MealID      *uint
	Servings    float64
	Measurement string `gorm:"type:varchar(20)"`
	DateTime    time.Time
	VoiceInput  *string
	AIResponse  *string
	TokensUsed  *int
}
