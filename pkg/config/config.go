package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Conversation scope modes. Fixed at startup, never mutated at runtime.
const (
	ScopeModeGlobal     = "global"
	ScopeModePerListing = "per-listing"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	FirebaseApiKey  string
	Environment     string
	ChatScopeMode   string
	JWTSecret       string
	JWTExpiry       int64
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:  getEnv("FIREBASE_API_KEY", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ChatScopeMode:   getEnv("CHAT_SCOPE_MODE", ScopeModePerListing),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:       getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours
	}

	if config.ChatScopeMode != ScopeModeGlobal && config.ChatScopeMode != ScopeModePerListing {
		return nil, fmt.Errorf("invalid CHAT_SCOPE_MODE %q: must be %q or %q",
			config.ChatScopeMode, ScopeModeGlobal, ScopeModePerListing)
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
