package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
)

// envPrefix namespaces every environment override
const envPrefix = "VIDWATCH_"

// GetDefaultConfig returns the built-in configuration
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 5,
			Environment:     "development",
			CORSOrigins: []string{
				"http://localhost:8080",
				"http://127.0.0.1:8080",
			},
			RateLimit: 120,
		},
		Player: entities.PlayerConfig{
			EmbedOrigin:            "https://www.youtube.com",
			EmbedBaseURL:           "https://www.youtube.com/embed/",
			TickIntervalMs:         1000,
			IdleTimeoutMs:          3000,
			FullscreenConfirmMs:    2000,
			OrphanTimeoutMs:        30000,
			DefaultDurationSeconds: 420,
			DefaultVolume:          100,
		},
		YouTube: entities.YouTubeConfig{
			BaseURL:         "https://www.googleapis.com/youtube/v3",
			RegionCode:      "US",
			MaxResults:      20,
			TimeoutSeconds:  10,
			CacheSize:       256,
			CacheTTLSeconds: 300,
		},
		Logging: entities.LoggingConfig{
			Level: "info",
		},
	}
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns a comma separated environment variable or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(envPrefix + key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
