package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// how long an issued token stays valid
	TokenTTL = 7 * 24 * time.Hour

	contextUserID    = "user_id"
	contextUserEmail = "user_email"
)

// represents JWT claims issued to dashboard users
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
