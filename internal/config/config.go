package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	// OpenRouter
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	ModelTimeout      time.Duration

	// Upload limits
	MaxFileSize int64

	// Run history
	HistoryEnabled bool
	DatabasePath   string

	// S3 image archive
	ArchiveEnabled    bool
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OPENROUTER_API_KEY", "")
	v.SetDefault("OPENROUTER_MODEL", "google/gemini-2.0-flash-001")
	v.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("MODEL_TIMEOUT", 60*time.Second)
	v.SetDefault("MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("HISTORY_ENABLED", false)
	v.SetDefault("DATABASE_PATH", "data/multidoc.db")
	v.SetDefault("ARCHIVE_ENABLED", false)
	v.SetDefault("S3_ENDPOINT", "localhost:9000")
	v.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	v.SetDefault("S3_BUCKET_NAME", "images")
	v.SetDefault("S3_USE_SSL", false)

	v.AutomaticEnv()

	// Optional file (yaml, env, json...) for settings not passed through the environment.
	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:              v.GetString("PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		OpenRouterAPIKey:  v.GetString("OPENROUTER_API_KEY"),
		OpenRouterModel:   v.GetString("OPENROUTER_MODEL"),
		OpenRouterBaseURL: v.GetString("OPENROUTER_BASE_URL"),
		ModelTimeout:      v.GetDuration("MODEL_TIMEOUT"),
		MaxFileSize:       v.GetInt64("MAX_FILE_SIZE"),
		HistoryEnabled:    v.GetBool("HISTORY_ENABLED"),
		DatabasePath:      v.GetString("DATABASE_PATH"),
		ArchiveEnabled:    v.GetBool("ARCHIVE_ENABLED"),
		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		S3BucketName:      v.GetString("S3_BUCKET_NAME"),
		S3UseSSL:          v.GetBool("S3_USE_SSL"),
	}

	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}

	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", cfg.MaxFileSize)
	}

	return cfg, nil
}
