package controllers

import (
	"net/http"
	"strconv"

	"github.com/aivanb/LifestyleApp/services"

	"github.com/gin-gonic/gin"
)

// GET /food?q=apple
func ListFoods(c *gin.Context) {
	foods, err := services.ListFoods(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, foods)
}

// GET /food/:id
func GetFood(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid food id"})
		return
	}
	food, err := services.GetFood(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, food)
}

// POST /food
func CreateFood(c *gin.Context) {
	var input services.CreateFoodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := c.GetUint("userID")

	synth := services.NewMetadataSynthesizer(services.NewOpenAIService())
	food, err := services.CreateFoodEntry(userID, input, synth)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, food)
}
