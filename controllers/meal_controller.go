package controllers

import (
	"net/http"
	"strconv"

	"github.com/aivanb/LifestyleApp/services"

	"github.com/gin-gonic/gin"
)

type CreateMealInput struct {
	MealName string                   `json:"meal_name" binding:"required"`
	Foods    []services.MealFoodInput `json:"foods" binding:"required,min=1"`
}

// POST /meal
func CreateMeal(c *gin.Context) {
	var input CreateMealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := c.GetUint("userID")

	meal, err := services.CreateMealWithFoods(userID, input.MealName, input.Foods)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// GET /meal
func ListMeals(c *gin.Context) {
	userID := c.GetUint("userID")
	meals, err := services.ListMeals(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meals)
}

// GET /meal/:id
func GetMeal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}
	userID := c.GetUint("userID")

	meal, err := services.GetMeal(userID, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meal)
}

// DELETE /meal/:id
func DeleteMeal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}
	userID := c.GetUint("userID")

	if err := services.DeleteMeal(userID, uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "meal deleted"})
}
