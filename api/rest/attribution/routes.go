package attribution

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/creatorlens/server/internal/attribution"
	"codeberg.org/creatorlens/server/internal/auth"
)

// runLimit throttles recompute requests; reads are not limited
func RegisterRoutes(router *gin.RouterGroup, runner Runner, reader attribution.Reader, runLimit gin.HandlerFunc) {
	group := router.Group("/attribution")
	group.Use(auth.AuthMiddleware())
	{
		group.GET("", ListHandler(reader))
		group.GET("/runs/latest", LatestRunHandler(reader))
		group.POST("/run", runLimit, RunHandler(runner))
	}
}
