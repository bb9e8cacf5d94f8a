package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/creatorlens/server/internal/errors"
	"codeberg.org/creatorlens/server/internal/logger"
)

// validates the bearer token and puts the user on the gin and request contexts
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			errors.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := ValidateJWT(token)
		if err != nil {
			errors.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextUserEmail, claims.Email)

		// downstream services log with the caller attached
		ctx := logger.WithContext(c.Request.Context(), logger.With("user_id", claims.UserID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(contextUserID)
	return userID, userID != ""
}
