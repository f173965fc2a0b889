package controllers

import (
	"net/http"

	"github.com/aivanb/LifestyleApp/config"
	"github.com/aivanb/LifestyleApp/services"

	"github.com/gin-gonic/gin"
)

// AIController exposes the text-to-log pipeline. The hub is shared so
// created logs can be pushed to connected clients.
type AIController struct {
	Hub *services.RealtimeHub
}

func NewAIController(hub *services.RealtimeHub) *AIController {
	return &AIController{Hub: hub}
}

type ParseFoodInputRequest struct {
	InputText  string `json:"input_text" binding:"required"`
	CreateMeal bool   `json:"create_meal"`
}

// POST /ai/parse-food
func (ac *AIController) ParseFood(c *gin.Context) {
	var req ParseFoodInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := c.GetUint("userID")

	parser := services.NewFoodParserService(
		services.NewFoodStore(config.DB),
		services.NewOpenAIService(),
		services.DefaultMatchConfig(),
		ac.Hub,
	)
	result := parser.ParseFoodInput(userID, req.InputText, req.CreateMeal)

	switch {
	case result.Success:
		c.JSON(http.StatusCreated, result)
	case len(result.LogsCreated) > 0:
		// Partial success: some candidates landed, some failed.
		c.JSON(http.StatusMultiStatus, result)
	default:
		c.JSON(http.StatusUnprocessableEntity, result)
	}
}

type GenerateMetadataRequest struct {
	FoodName         string                 `json:"food_name" binding:"required"`
	ExistingMetadata map[string]interface{} `json:"existing_metadata"`
}

// POST /ai/generate-metadata
func (ac *AIController) GenerateMetadata(c *gin.Context) {
	var req GenerateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := c.GetUint("userID")

	parser := services.NewFoodParserService(
		services.NewFoodStore(config.DB),
		services.NewOpenAIService(),
		services.DefaultMatchConfig(),
		nil,
	)
	metadata := parser.GenerateMissingMetadata(userID, req.FoodName, req.ExistingMetadata)

	c.JSON(http.StatusOK, gin.H{
		"food_name": req.FoodName,
		"metadata":  metadata,
	})
}

// GET /ai/usage
func (ac *AIController) UsageStats(c *gin.Context) {
	userID := c.GetUint("userID")
	stats, err := services.GetUsageStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
