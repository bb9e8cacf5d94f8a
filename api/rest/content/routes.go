package content

import (
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/creatorlens/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, postLister PostLister, commerceLister CommerceLister) {
	group := router.Group("/content")
	group.Use(auth.AuthMiddleware())
	{
		group.GET("/matches", MatchesHandler(postLister, commerceLister, time.Now))
		group.POST("/links", LinksHandler())
	}
}
