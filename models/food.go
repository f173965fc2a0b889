package models

import "gorm.io/gorm"

// Food groups accepted on Food.FoodGroup.
const (
	FoodGroupFruit     = "fruit"
	FoodGroupVegetable = "vegetable"
	FoodGroupGrain     = "grain"
	FoodGroupProtein   = "protein"
	FoodGroupDairy     = "dairy"
	FoodGroupOther     = "other"
)

// Food is one row of the master food database. Names are unique; rows are
// append-only once created (conflicting metadata gets a variant row
// instead of an edit).
type Food struct {
	gorm.Model
	FoodName      string `gorm:"type:varchar(200);uniqueIndex;not null"`
	ServingSize   float64
	Unit          string `gorm:"type:varchar(20)"`
	Calories      float64
	Protein       float64
	Fat           float64
	Carbohydrates float64
	Fiber         float64
	Sodium        float64
	Sugar         float64
	SaturatedFat  float64
	TransFat      float64
	Calcium       float64
	Iron          float64
	Magnesium     float64
	Cholesterol   float64
	VitaminA      float64
	VitaminC      float64
	VitaminD      float64
	Caffeine      float64
	FoodGroup     string `gorm:"type:varchar(20)"`
	Brand         string `gorm:"type:varchar(100)"`
	Cost          *float64
	MakePublic    bool
}
