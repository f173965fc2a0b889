package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email         string `gorm:"uniqueIndex;not null"`
	Password      string `gorm:"not null"`
	FirstName     string
	LastName      string
	Birthday      time.Time
	Sex           string  // "male" | "female"
	Height        float64 // cm
	Weight        float64 // kg
	ActivityLevel string  // sedentary|light|moderate|active|very_active
	Disabled      bool
}
