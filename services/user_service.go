package services

import (
	"errors"
	"time"

	"github.com/aivanb/LifestyleApp/config"
	"github.com/aivanb/LifestyleApp/models"
	"github.com/aivanb/LifestyleApp/utils"
)

type ProfileInput struct {
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Birthday      string  `json:"birthday"` // YYYY-MM-DD
	Sex           string  `json:"sex"`
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	ActivityLevel string  `json:"activity_level"`
}

func GetUserProfile(email string) (map[string]interface{}, error) {
	var user models.User
	result := config.DB.Where("email = ? AND disabled = ?", email, false).First(&user)
	if result.Error != nil {
		return nil, errors.New("user not found or disabled")
	}

	age := 0
	if !user.Birthday.IsZero() {
		age = utils.CalculateAge(user.Birthday)
	}

	return map[string]interface{}{
		"id":             user.ID,
		"email":          user.Email,
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"birthday":       user.Birthday.Format("2006-01-02"),
		"age":            age,
		"sex":            user.Sex,
		"height":         user.Height,
		"weight":         user.Weight,
		"activity_level": user.ActivityLevel,
	}, nil
}

func UpdateUserProfile(email string, input ProfileInput) error {
	var user models.User
	result := config.DB.Where("email = ? AND disabled = ?", email, false).First(&user)
	if result.Error != nil {
		return errors.New("user not found or disabled")
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Birthday != "" {
		if birthday, err := time.Parse("2006-01-02", input.Birthday); err == nil {
			user.Birthday = birthday
		}
	}
	if input.Sex != "" {
		user.Sex = input.Sex
	}
	if input.Height > 0 {
		user.Height = input.Height
	}
	if input.Weight > 0 {
		user.Weight = input.Weight
	}
	if input.ActivityLevel != "" {
		user.ActivityLevel = input.ActivityLevel
	}

	return config.DB.Save(&user).Error
}

// HealthMetrics are the derived body metrics for a profile.
type HealthMetrics struct {
	BMI         float64 `json:"bmi"`
	BMICategory string  `json:"bmi_category"`
	BMR         float64 `json:"bmr"`
	TDEE        float64 `json:"tdee"`
}

func GetHealthMetrics(email string) (*HealthMetrics, error) {
	user, err := FindUserByEmail(email)
	if err != nil {
		return nil, err
	}

	bmi, err := utils.CalculateBMI(user.Height, user.Weight)
	if err != nil {
		return nil, err
	}

	age := utils.CalculateAge(user.Birthday)
	bmr := utils.CalculateBMR(user.Weight, user.Height, age, user.Sex)
	tdee := utils.CalculateTDEE(bmr, user.ActivityLevel)

	return &HealthMetrics{
		BMI:         bmi,
		BMICategory: utils.BMICategory(bmi),
		BMR:         bmr,
		TDEE:        tdee,
	}, nil
}
