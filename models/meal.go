package models

import "gorm.io/gorm"

// Meal is a user-named grouping of foods. Name is unique per user.
type Meal struct {
	gorm.Model
	UserID   uint   `gorm:"uniqueIndex:idx_meal_user_name;not null"`
	MealName string `gorm:"type:varchar(100);uniqueIndex:idx_meal_user_name;not null"`
	Foods    []MealFood
}

// MealFood joins a meal to a food with a serving count. One row per
// (meal, food) pair.
type MealFood struct {
	gorm.Model
	MealID   uint `gorm:"uniqueIndex:idx_meal_food;not null"`
	FoodID   uint `gorm:"uniqueIndex:idx_meal_food;not null"`
	Servings float64
}
