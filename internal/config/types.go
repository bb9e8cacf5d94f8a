package config

import "time"

type Config struct {
	SupabaseConnString string
	RedisURL           string
	JWTSecret          string
	Environment        string
	Port               string
	AllowedOrigins     []string
	AttributionRunRate string
}

// flags for the recompute command
type Flags struct {
	UserID  string
	All     bool
	RPS     float64
	Timeout time.Duration
}
