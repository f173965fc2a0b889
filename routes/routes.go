package routes

import (
	"github.com/aivanb/LifestyleApp/controllers"
	"github.com/aivanb/LifestyleApp/middlewares"
	"github.com/aivanb/LifestyleApp/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter(hub *services.RealtimeHub) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Protected user routes
	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)
		user.GET("/health", controllers.GetHealthMetrics)
	}

	food := r.Group("/food")
	food.Use(middlewares.AuthMiddleware())
	{
		food.GET("", controllers.ListFoods)
		food.GET("/:id", controllers.GetFood)
		food.POST("", controllers.CreateFood)
	}

	meal := r.Group("/meal")
	meal.Use(middlewares.AuthMiddleware())
	{
		meal.GET("", controllers.ListMeals)
		meal.POST("", controllers.CreateMeal)
		meal.GET("/:id", controllers.GetMeal)
		meal.DELETE("/:id", controllers.DeleteMeal)
	}

	logs := r.Group("/log")
	logs.Use(middlewares.AuthMiddleware())
	{
		logs.GET("", controllers.ListLogs)
		logs.POST("", controllers.CreateLog)
		logs.DELETE("/:id", controllers.DeleteLog)
		logs.GET("/summary", controllers.GetDailySummary)
	}

	aiCtl := controllers.NewAIController(hub)
	ai := r.Group("/ai")
	ai.Use(middlewares.AuthMiddleware())
	{
		ai.POST("/parse-food", aiCtl.ParseFood)
		ai.POST("/generate-metadata", aiCtl.GenerateMetadata)
		ai.GET("/usage", aiCtl.UsageStats)
	}

	rtCtl := controllers.NewRealtimeController(hub)
	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware())
	{
		ws.GET("/logs", rtCtl.LogsWS)
	}

	return r
}
