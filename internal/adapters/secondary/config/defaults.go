package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
)

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	config := &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("PATTERNDECK_HOST", "localhost"),
			Port:            getEnvIntOrDefault("PATTERNDECK_PORT", 8501),
			ReadTimeout:     getEnvIntOrDefault("PATTERNDECK_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("PATTERNDECK_WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault("PATTERNDECK_SHUTDOWN_TIMEOUT", 5),
			CORSOrigins: getEnvSliceOrDefault("PATTERNDECK_CORS_ORIGINS", []string{
				"http://localhost:8501",
				"http://127.0.0.1:8501",
			}),
			RatePerSecond: 10,
			RateBurst:     30,
			TrustedHops:   getEnvIntOrDefault("PATTERNDECK_TRUSTED_HOPS", 0),
		},
		Browser: entities.BrowserConfig{
			AutoOpen: entities.Bool(getEnvBoolOrDefault("PATTERNDECK_BROWSER_AUTO_OPEN", true)),
			Browser:  "default",
		},
		Logging: entities.LoggingConfig{
			Level:      getEnvOrDefault("PATTERNDECK_LOG_LEVEL", "info"),
			Verbose:    getEnvBoolOrDefault("PATTERNDECK_LOG_VERBOSE", false),
			JSONFormat: getEnvBoolOrDefault("PATTERNDECK_LOG_JSON", false),
		},
		Presentation: entities.PresentationConfig{
			RevealURL:       getEnvOrDefault("PATTERNDECK_REVEAL_URL", "https://unpkg.com/reveal.js@5.1.0/dist"),
			Theme:           getEnvOrDefault("PATTERNDECK_THEME", "white"),
			AllowUnsafeHTML: entities.Bool(true),
		},
	}

	return config
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns a comma-separated environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
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
