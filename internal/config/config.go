// Package config provides application configuration management.
// It loads settings from environment variables (after an optional .env file)
// and validates them before the CLI builds its components.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	LogLevel string
	BaseURL  string
	Year     int // Detail year; 0 = current fiscal year

	// Scraper Configuration
	MinInterval       time.Duration
	HTTPTimeout       time.Duration
	UserAgent         string // Empty = random browser user agent per request
	DetailConcurrency int

	// Retry Configuration
	RetryAttempts   int
	RetryMaxElapsed time.Duration
	RetryMinBackoff time.Duration
	RetryMaxBackoff time.Duration

	// Response Cache Configuration
	CacheEnabled bool
	CachePath    string        // Empty = user cache directory
	CacheTTL     time.Duration // 0 = entries never expire

	// Output Configuration
	OutputDir       string
	MetricsTextfile string // node_exporter textfile path; empty = disabled

	R2          R2Config
	Sentry      SentryConfig
	BetterStack BetterStackConfig
}

// R2Config holds Cloudflare R2 archive storage settings.
type R2Config struct {
	Enabled         bool
	AccountID       string
	Endpoint        string // Derived from AccountID when empty
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Prefix          string
}

// SentryConfig holds Better Stack error tracking settings.
type SentryConfig struct {
	Enabled     bool
	Token       string
	Host        string
	Environment string
	SampleRate  float64
}

// BetterStackConfig holds Better Stack log shipping settings.
type BetterStackConfig struct {
	Token    string
	Endpoint string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel: getEnv(EnvLogLevel, "info"),
		BaseURL:  getEnv(EnvBaseURL, "https://catalog.he.u-tokyo.ac.jp/"),
		Year:     getIntEnv(EnvYear, 0),

		MinInterval:       getDurationEnv(EnvMinInterval, ScraperMinInterval),
		HTTPTimeout:       getDurationEnv(EnvHTTPTimeout, ScraperRequest),
		UserAgent:         getEnv(EnvUserAgent, ""),
		DetailConcurrency: getIntEnv(EnvDetailConcurrency, 100),

		RetryAttempts:   getIntEnv(EnvRetryAttempts, 3),
		RetryMaxElapsed: getDurationEnv(EnvRetryMaxElapsed, ScraperRetryMaxElapsed),
		RetryMinBackoff: getDurationEnv(EnvRetryMinBackoff, ScraperRetryMinBackoff),
		RetryMaxBackoff: getDurationEnv(EnvRetryMaxBackoff, ScraperRetryMaxBackoff),

		CacheEnabled: getBoolEnv(EnvCacheEnabled, true),
		CachePath:    getEnv(EnvCachePath, ""),
		CacheTTL:     getDurationEnv(EnvCacheTTL, CacheTTL),

		OutputDir:       getEnv(EnvOutputDir, "."),
		MetricsTextfile: getEnv(EnvMetricsTextfile, ""),

		R2: R2Config{
			Enabled:         getBoolEnv(EnvR2Enabled, false),
			AccountID:       getEnv(EnvR2AccountID, ""),
			Endpoint:        getEnv(EnvR2Endpoint, ""),
			AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
			SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
			BucketName:      getEnv(EnvR2BucketName, ""),
			Prefix:          getEnv(EnvR2Prefix, "archives"),
		},

		Sentry: SentryConfig{
			Enabled:     getBoolEnv(EnvSentryEnabled, false),
			Token:       getEnv(EnvSentryToken, ""),
			Host:        getEnv(EnvSentryHost, ""),
			Environment: getEnv(EnvSentryEnvironment, "production"),
			SampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),
		},

		BetterStack: BetterStackConfig{
			Token:    getEnv(EnvBetterStackToken, ""),
			Endpoint: getEnv(EnvBetterStackEndpoint, ""),
		},
	}

	if cfg.R2.Endpoint == "" && cfg.R2.AccountID != "" {
		cfg.R2.Endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2.AccountID)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%s must be debug, info, warn or error, got %q", EnvLogLevel, c.LogLevel))
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("%s must be an http(s) URL, got %q", EnvBaseURL, c.BaseURL))
	}
	if c.Year < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvYear, c.Year))
	}
	if c.MinInterval < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %v", EnvMinInterval, c.MinInterval))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvHTTPTimeout, c.HTTPTimeout))
	}
	if c.DetailConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvDetailConcurrency, c.DetailConcurrency))
	}
	if c.RetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvRetryAttempts, c.RetryAttempts))
	}
	if c.RetryMinBackoff < 0 || c.RetryMaxBackoff < 0 || c.RetryMaxElapsed < 0 {
		errs = append(errs, errors.New("retry durations cannot be negative"))
	}
	if c.RetryMaxBackoff > 0 && c.RetryMinBackoff > c.RetryMaxBackoff {
		errs = append(errs, fmt.Errorf("%s (%v) exceeds %s (%v)",
			EnvRetryMinBackoff, c.RetryMinBackoff, EnvRetryMaxBackoff, c.RetryMaxBackoff))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %v", EnvCacheTTL, c.CacheTTL))
	}
	if c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvOutputDir))
	}
	if err := c.R2.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("r2 config: %w", err))
	}
	if err := c.Sentry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sentry config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the R2 settings when the feature is enabled.
func (c R2Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, fmt.Errorf("%s or %s is required", EnvR2AccountID, EnvR2Endpoint))
	}
	if c.AccessKeyID == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvR2AccessKeyID))
	}
	if c.SecretAccessKey == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvR2SecretAccessKey))
	}
	if c.BucketName == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvR2BucketName))
	}
	return errors.Join(errs...)
}

// Validate checks the Sentry settings when the feature is enabled.
func (c SentryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	if c.Token == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvSentryToken))
	}
	if c.Host == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvSentryHost))
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", EnvSentrySampleRate, c.SampleRate))
	}
	return errors.Join(errs...)
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
