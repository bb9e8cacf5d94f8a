package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort               = "8080"
	defaultAttributionRunRate = "10-M"
)

// loads server configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

// loads configuration for CLI tools, which never verify tokens
func LoadWorkerEnvironment() (*Config, error) {
	return load()
}

func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	supabaseConnStr := os.Getenv("SUPABASE_CONNECTION_STRING")
	redisURL := os.Getenv("REDIS_URL")
	jwtSecret := os.Getenv("JWT_SECRET")
	environment := os.Getenv("ENVIRONMENT")
	port := os.Getenv("PORT")
	runRate := os.Getenv("ATTRIBUTION_RUN_RATE")

	if supabaseConnStr == "" {
		return nil, fmt.Errorf("SUPABASE_CONNECTION_STRING environment variable is required")
	}

	if environment == "" {
		environment = "development"
	}

	if port == "" {
		port = defaultPort
	}

	if runRate == "" {
		runRate = defaultAttributionRunRate
	}

	return &Config{
		SupabaseConnString: supabaseConnStr,
		RedisURL:           redisURL,
		JWTSecret:          jwtSecret,
		Environment:        environment,
		Port:               port,
		AllowedOrigins:     splitOrigins(os.Getenv("ALLOWED_ORIGINS")),
		AttributionRunRate: runRate,
	}, nil
}

// reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return []string{"http://localhost:5173"}
	}

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	return origins
}
