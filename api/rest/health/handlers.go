package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "creatorlens"

type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

// anything with a Ping, e.g. *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: serviceName,
		Version: "1.0.0",
	})
}

// reports unavailable when the database does not answer within 2s
func ReadyHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, Response{Status: "unavailable", Service: serviceName})
			return
		}

		c.JSON(http.StatusOK, Response{Status: "ready", Service: serviceName})
	}
}

func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
