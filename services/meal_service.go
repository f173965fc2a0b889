package services

import (
	"errors"
	"fmt"

	"github.com/aivanb/LifestyleApp/config"
	"github.com/aivanb/LifestyleApp/models"
)

type MealFoodInput struct {
	FoodID   uint    `json:"food_id" binding:"required"`
	Servings float64 `json:"servings"`
}

// CreateMealWithFoods builds a named meal from explicit food references.
// Referencing a missing food id fails the whole request.
func CreateMealWithFoods(userID uint, mealName string, items []MealFoodInput) (*models.Meal, error) {
	var count int64
	if err := config.DB.Model(&models.Meal{}).
		Where("user_id = ? AND meal_name = ?", userID, mealName).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("meal %q already exists", mealName)
	}

	meal := &models.Meal{UserID: userID, MealName: mealName}
	if err := config.DB.Create(meal).Error; err != nil {
		return nil, err
	}

	for _, it := range items {
		var food models.Food
		if err := config.DB.First(&food, it.FoodID).Error; err != nil {
			return nil, fmt.Errorf("food %d not found", it.FoodID)
		}
		servings := it.Servings
		if servings <= 0 {
			servings = 1
		}
		mf := &models.MealFood{MealID: meal.ID, FoodID: food.ID, Servings: servings}
		if err := config.DB.Create(mf).Error; err != nil {
			return nil, err
		}
	}

	var populated models.Meal
	if err := config.DB.Preload("Foods").First(&populated, meal.ID).Error; err != nil {
		return nil, err
	}
	return &populated, nil
}

func ListMeals(userID uint) ([]models.Meal, error) {
	var meals []models.Meal
	err := config.DB.
		Preload("Foods").
		Where("user_id = ?", userID).
		Order("meal_name").
		Find(&meals).Error
	return meals, err
}

func GetMeal(userID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := config.DB.
		Preload("Foods").
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		return nil, errors.New("meal not found")
	}
	return &meal, nil
}

func DeleteMeal(userID, mealID uint) error {
	meal, err := GetMeal(userID, mealID)
	if err != nil {
		return err
	}
	if err := config.DB.Where("meal_id = ?", meal.ID).Delete(&models.MealFood{}).Error; err != nil {
		return err
	}
	return config.DB.Delete(meal).Error
}
