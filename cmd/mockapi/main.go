package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"leave-sync/internal/config"
	"leave-sync/internal/mockapi"
	"leave-sync/pkg/jwt"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Seed the in-memory store with a small team and a couple of requests
	store := mockapi.NewStore()
	store.Seed()

	jwtUtil := jwt.NewJWTUtil()

	// Setup Gin router
	router := gin.Default()

	// CORS middleware
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	// Setup routes
	mockapi.SetupRoutes(router, store, jwtUtil)

	log.Printf("Mock leave API listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
