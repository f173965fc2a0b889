package services

import (
	"errors"

	"github.com/aivanb/LifestyleApp/models"

	"gorm.io/gorm"
)

// FoodStore is the persistence boundary the parsing pipeline depends on:
// simple create/get/filter operations, nothing transactional. Lookups by
// name are case-insensitive; existence checks are exact.
type FoodStore interface {
	FindMealByName(userID uint, name string) (*models.Meal, error)
	FindFoodsByName(name string) ([]models.Food, error)
	FoodNameExists(name string) (bool, error)
	MealNameExists(userID uint, name string) (bool, error)
	CreateFood(food *models.Food) error
	CreateMeal(meal *models.Meal) error
	CreateMealFood(mf *models.MealFood) error
	ListMealFoods(mealID uint) ([]models.MealFood, error)
	CreateFoodLog(entry *models.FoodLog) error
}

type gormFoodStore struct {
	db *gorm.DB
}

func NewFoodStore(db *gorm.DB) FoodStore {
	return &gormFoodStore{db: db}
}

// FindMealByName matches a user's meal by name, ignoring case. Returns
// (nil, nil) when there is no such meal.
func (s *gormFoodStore) FindMealByName(userID uint, name string) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.
		Where("user_id = ? AND LOWER(meal_name) = LOWER(?)", userID, name).
		First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

// FindFoodsByName returns all foods matching the name case-insensitively,
// ordered by id. With several same-named rows the first is an arbitrary
// but stable pick, not a ranking.
func (s *gormFoodStore) FindFoodsByName(name string) ([]models.Food, error) {
	var foods []models.Food
	err := s.db.
		Where("LOWER(food_name) = LOWER(?)", name).
		Order("id").
		Find(&foods).Error
	return foods, err
}

func (s *gormFoodStore) FoodNameExists(name string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Food{}).Where("food_name = ?", name).Count(&count).Error
	return count > 0, err
}

func (s *gormFoodStore) MealNameExists(userID uint, name string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Meal{}).
		Where("user_id = ? AND meal_name = ?", userID, name).
		Count(&count).Error
	return count > 0, err
}

func (s *gormFoodStore) CreateFood(food *models.Food) error {
	return s.db.Create(food).Error
}

func (s *gormFoodStore) CreateMeal(meal *models.Meal) error {
	return s.db.Create(meal).Error
}

func (s *gormFoodStore) CreateMealFood(mf *models.MealFood) error {
	return s.db.Create(mf).Error
}

func (s *gormFoodStore) ListMealFoods(mealID uint) ([]models.MealFood, error) {
	var rows []models.MealFood
	err := s.db.Where("meal_id = ?", mealID).Find(&rows).Error
	return rows, err
}

func (s *gormFoodStore) CreateFoodLog(entry *models.FoodLog) error {
	return s.db.Create(entry).Error
}
