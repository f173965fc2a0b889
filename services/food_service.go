package services

import (
	"errors"
	"fmt"

	"github.com/aivanb/LifestyleApp/config"
	"github.com/aivanb/LifestyleApp/models"

	"gorm.io/gorm"
)

// CreateFoodInput is the manual food-creation payload. Metadata is the
// same whitelisted map the AI pipeline uses; when GenerateMissing is set
// the synthesizer fills the gaps before insert.
type CreateFoodInput struct {
	FoodName        string                 `json:"food_name" binding:"required"`
	Metadata        map[string]interface{} `json:"metadata"`
	MakePublic      bool                   `json:"make_public"`
	GenerateMissing bool                   `json:"generate_missing"`
}

func CreateFoodEntry(userID uint, input CreateFoodInput, synth *MetadataSynthesizer) (*models.Food, error) {
	var count int64
	if err := config.DB.Model(&models.Food{}).
		Where("food_name = ?", input.FoodName).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("food %q already exists", input.FoodName)
	}

	md := filterMetadata(input.Metadata)
	if input.GenerateMissing {
		md = synth.Generate(userID, input.FoodName, md)
	} else {
		md = mergeWithDefaults(md)
	}

	food := &models.Food{FoodName: input.FoodName, MakePublic: input.MakePublic}
	applyMetadataToFood(food, md, false)

	if err := config.DB.Create(food).Error; err != nil {
		return nil, err
	}
	return food, nil
}

func GetFood(id uint) (*models.Food, error) {
	var food models.Food
	if err := config.DB.First(&food, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("food not found")
		}
		return nil, err
	}
	return &food, nil
}

// ListFoods returns public foods, optionally filtered by a name substring.
func ListFoods(query string) ([]models.Food, error) {
	var foods []models.Food
	tx := config.DB.Where("make_public = ?", true)
	if query != "" {
		tx = tx.Where("LOWER(food_name) LIKE LOWER(?)", "%"+query+"%")
	}
	err := tx.Order("food_name").Limit(100).Find(&foods).Error
	return foods, err
}
