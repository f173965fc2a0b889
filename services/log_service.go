package services

import (
	"errors"
	"time"

	"github.com/aivanb/LifestyleApp/config"
	"github.com/aivanb/LifestyleApp/models"
)

type CreateLogInput struct {
	FoodID   uint    `json:"food_id" binding:"required"`
	MealID   *uint   `json:"meal_id"`
	Servings float64 `json:"servings"`
}

// CreateLogEntry records one manual consumption event. Measurement is
// taken from the food's own unit.
func CreateLogEntry(userID uint, input CreateLogInput) (*models.FoodLog, error) {
	var food models.Food
	if err := config.DB.First(&food, input.FoodID).Error; err != nil {
		return nil, errors.New("food not found")
	}

	servings := input.Servings
	if servings <= 0 {
		servings = 1
	}

	entry := &models.FoodLog{
		UserID:      userID,
		FoodID:      food.ID,
		MealID:      input.MealID,
		Servings:    servings,
		Measurement: food.Unit,
		DateTime:    time.Now(),
	}
	if err := config.DB.Create(entry).Error; err != nil {
		return nil, err
	}
	entry.Food = food
	return entry, nil
}

// ListLogs returns a user's food logs, newest first, optionally bounded
// by [from, to].
func ListLogs(userID uint, from, to *time.Time) ([]models.FoodLog, error) {
	tx := config.DB.Preload("Food").Where("user_id = ?", userID)
	if from != nil {
		tx = tx.Where("date_time >= ?", *from)
	}
	if to != nil {
		tx = tx.Where("date_time <= ?", *to)
	}
	var logs []models.FoodLog
	err := tx.Order("date_time DESC").Find(&logs).Error
	return logs, err
}

func DeleteLog(userID, logID uint) error {
	var entry models.FoodLog
	if err := config.DB.Where("id = ? AND user_id = ?", logID, userID).First(&entry).Error; err != nil {
		return errors.New("log not found")
	}
	return config.DB.Delete(&entry).Error
}

// DailySummary totals a day's intake from the logged servings and the
// per-serving food values.
type DailySummary struct {
	Date          string  `json:"date"`
	Entries       int     `json:"entries"`
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
}

func GetDailySummary(userID uint, day time.Time) (*DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var logs []models.FoodLog
	err := config.DB.Preload("Food").
		Where("user_id = ? AND date_time >= ? AND date_time < ?", userID, start, end).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{Date: start.Format("2006-01-02")}
	for _, l := range logs {
		summary.Entries++
		summary.Calories += l.Food.Calories * l.Servings
		summary.Protein += l.Food.Protein * l.Servings
		summary.Fat += l.Food.Fat * l.Servings
		summary.Carbohydrates += l.Food.Carbohydrates * l.Servings
	}
	return summary, nil
}
