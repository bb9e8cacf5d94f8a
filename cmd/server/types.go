package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/creatorlens/server/creatorlens/commerceposts"
	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/internal/attribution"
	"codeberg.org/creatorlens/server/internal/config"
	"codeberg.org/creatorlens/server/internal/runlock"
)

// holds all dependencies and state for the API server
type Server struct {
	db           *pgxpool.Pool
	config       *config.Config
	postRepo     *posts.Repository
	commerceRepo *commerceposts.Repository
	store        *attribution.PostgresStore
	attribution  *attribution.Service
	locker       runlock.Locker
	redisLocker  *runlock.RedisLocker // nil without REDIS_URL
	runLimit     gin.HandlerFunc
	router       *gin.Engine
}
