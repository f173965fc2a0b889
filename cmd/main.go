package main

import (
	"github.com/aivanb/LifestyleApp/config"
	"github.com/aivanb/LifestyleApp/routes"
	"github.com/aivanb/LifestyleApp/services"
)

func main() {
	config.InitDB()
	hub := services.NewRealtimeHub()
	r := routes.SetupRouter(hub)
	r.Run(":8080")
}
