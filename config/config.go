package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func LoadEnv() error {
	// Local development reads .env; in deployed environments the variables
	// are already set and a missing file is not an error.
	_ = godotenv.Load()
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv(log *zap.Logger) error {
	var missing []string

	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	warnings := map[string]string{
		"JWT_REFRESH_SECRET":      "refresh tokens are signed with JWT_SECRET",
		"REDIS_URL":               "category tree cache disabled",
		"FIREBASE_STORAGE_BUCKET": "image uploads will fail",
		"FRONTEND_URL":            "CORS may not work correctly",
	}
	for key, effect := range warnings {
		if os.Getenv(key) == "" {
			log.Warn("environment variable not set", zap.String("key", key), zap.String("effect", effect))
		}
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func GetEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

// GetEnvDuration parses values like "30s" or "2h".
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
