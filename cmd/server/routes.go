package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"codeberg.org/creatorlens/server/api/rest/attribution"
	"codeberg.org/creatorlens/server/api/rest/content"
	"codeberg.org/creatorlens/server/api/rest/health"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(CORSMiddleware(server.config.AllowedOrigins))

	router.GET("/health", health.Handler)
	router.GET("/ready", health.ReadyHandler(server.db))

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		attribution.RegisterRoutes(v1, server.attribution, server.store, server.runLimit)
		content.RegisterRoutes(v1, server.postRepo, server.commerceRepo)
	}
}

// allows the dashboard origins to call the API with bearer tokens
func CORSMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
