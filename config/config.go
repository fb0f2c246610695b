package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AppEnv        string
	LogLevel      string
	DatabaseURL   string
	RedisURL      string
	RedisPassword string
	RedisDB       int
	JWTSecret     string

	// Friend request creation limit, per authenticated user
	FriendRequestRate  float64
	FriendRequestBurst int

	// TTL of the redis lock that serializes requests between the same pair
	PairLockTTL time.Duration

	// Basic auth for /metrics; endpoint is disabled when MetricsUser is empty
	MetricsUser string
	MetricsPass string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	// .env is optional; deployments use real env vars
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		AppEnv:        getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		JWTSecret:     os.Getenv("JWT_SECRET"),

		FriendRequestRate:  getEnvFloat("FRIEND_REQUEST_RATE", 0.5),
		FriendRequestBurst: getEnvInt("FRIEND_REQUEST_BURST", 10),

		PairLockTTL: time.Duration(getEnvInt("PAIR_LOCK_TTL_SECONDS", 5)) * time.Second,

		MetricsUser: os.Getenv("METRICS_USER"),
		MetricsPass: os.Getenv("METRICS_PASS"),
	}
}

// Validate checks required fields and limits. Production additionally
// requires a strong JWT secret.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.FriendRequestRate <= 0 {
		return fmt.Errorf("FRIEND_REQUEST_RATE must be positive")
	}
	if c.FriendRequestBurst < 1 {
		return fmt.Errorf("FRIEND_REQUEST_BURST must be at least 1")
	}
	if c.PairLockTTL <= 0 {
		return fmt.Errorf("PAIR_LOCK_TTL_SECONDS must be positive")
	}
	if (c.MetricsUser == "") != (c.MetricsPass == "") {
		return fmt.Errorf("METRICS_USER and METRICS_PASS must be set together")
	}

	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
