package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	RedisAddr  string
	LogLevel   string

	// GitHub API configuration
	GithubToken    string
	GithubCacheTTL time.Duration
}

func Load() *Config {
	cacheTTLMin, _ := strconv.Atoi(getEnvOrDefault("GITHUB_CACHE_TTL_MINUTES", "10"))
	if cacheTTLMin <= 0 {
		cacheTTLMin = 10
	}

	return &Config{
		ServerAddr:     getEnvOrDefault("SERVER_ADDR", ":5000"),
		DBHost:         getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:         getEnvOrDefault("DB_PORT", "5432"),
		DBUser:         getEnvOrDefault("DB_USER", "devconnect"),
		DBPassword:     getEnvOrDefault("DB_PASSWORD", "devconnect_dev_password"),
		DBName:         getEnvOrDefault("DB_NAME", "devconnect"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", generateDefaultSecret()),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		GithubToken:    os.Getenv("GITHUB_TOKEN"),
		GithubCacheTTL: time.Duration(cacheTTLMin) * time.Minute,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func generateDefaultSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "dev-secret-change-in-production"
	}
	return hex.EncodeToString(bytes)
}
