// Package config provides configuration for the CodeBuddy server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the YAML representation of the configuration. Durations are plain
// integers with the unit in the field name, matching what sits comfortably in
// a hand-edited file.
type File struct {
	HTTPPort    int    `yaml:"http_port"`
	DatabaseURL string `yaml:"database_url"`

	JWTSecret   string `yaml:"jwt_secret"`
	JWTTTLHours int    `yaml:"jwt_ttl_hours"`

	LLMBaseURL   string `yaml:"llm_base_url"`
	LLMAPIKey    string `yaml:"llm_api_key"`
	LLMModel     string `yaml:"llm_model"`
	LLMTimeoutMs int    `yaml:"llm_timeout_ms"`

	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`
}

// Config holds the resolved server configuration.
type Config struct {
	HTTPPort    int
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	LogLevel  string
	LogPretty bool
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		HTTPPort:    8080,
		DatabaseURL: "file:codebuddy.db?cache=shared&mode=rwc",
		JWTTTL:      24 * time.Hour,
		LLMBaseURL:  "https://api.openai.com",
		LLMModel:    "gpt-4o-mini",
		LLMTimeout:  12 * time.Second,
		LogLevel:    "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// non-empty and present), and environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			var f File
			if err := yaml.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
			cfg.applyFile(&f)
		}
	}

	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTTTL = getEnvDuration("JWT_TTL", cfg.JWTTTL)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", cfg.LLMAPIKey)
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	cfg.LLMTimeout = getEnvDuration("LLM_TIMEOUT", cfg.LLMTimeout)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required (JWT_SECRET)")
	}
	return cfg, nil
}

func (c *Config) applyFile(f *File) {
	if f.HTTPPort != 0 {
		c.HTTPPort = f.HTTPPort
	}
	if f.DatabaseURL != "" {
		c.DatabaseURL = f.DatabaseURL
	}
	if f.JWTSecret != "" {
		c.JWTSecret = f.JWTSecret
	}
	if f.JWTTTLHours != 0 {
		c.JWTTTL = time.Duration(f.JWTTTLHours) * time.Hour
	}
	if f.LLMBaseURL != "" {
		c.LLMBaseURL = f.LLMBaseURL
	}
	if f.LLMAPIKey != "" {
		c.LLMAPIKey = f.LLMAPIKey
	}
	if f.LLMModel != "" {
		c.LLMModel = f.LLMModel
	}
	if f.LLMTimeoutMs != 0 {
		c.LLMTimeout = time.Duration(f.LLMTimeoutMs) * time.Millisecond
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	c.LogPretty = f.LogPretty
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
