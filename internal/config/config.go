// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration read from the environment.
type Config struct {
	Port      string
	DataDir   string
	LogDir    string
	DebugMode bool

	LogLevel    string
	LogEncoding string

	OpenAIAPIKey   string
	LLMProvider    string
	LLMBaseURL     string
	TextModel      string
	ImageModel     string
	RequestTimeout time.Duration
}

// Load reads the configuration from environment variables, with an optional
// .env file.
func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:      getEnv("PORT", "8080"),
		DataDir:   getEnvPath("DATA_DIR", "data"),
		LogDir:    getEnvPath("LOG_DIR", "logs"),
		DebugMode: getEnvBool("DEBUG_MODE", false),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogEncoding: getEnv("LOG_ENCODING", "json"),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
		LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
		TextModel:      getEnv("TEXT_MODEL", "gpt-4o-mini"),
		ImageModel:     getEnv("IMAGE_MODEL", "gpt-image-1-mini"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 120*time.Second),
	}

	return config, nil
}

// LLMConfig renders the provider initialization map for the configured
// provider.
func (c *Config) LLMConfig() map[string]string {
	cfg := map[string]string{
		"api_key":       c.OpenAIAPIKey,
		"default_model": c.TextModel,
		"image_model":   c.ImageModel,
	}
	if c.LLMBaseURL != "" {
		cfg["base_url"] = c.LLMBaseURL
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath resolves a directory from the environment and makes sure it
// exists.
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Printf("warning: failed to create directory %s: %v\n", path, err)
		}
	}

	return path
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
