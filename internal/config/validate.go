// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateJudge(); err != nil {
		return err
	}
	if err := c.validateTraining(); err != nil {
		return err
	}
	if err := c.validateBundles(); err != nil {
		return err
	}
	return c.validatePlatforms()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid zerolog level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateJudge validates provider settings only when judging is
// enabled. Disabled judging needs no credentials and the extraction
// path falls back to neutral scores.
func (c *Config) validateJudge() error {
	if !c.Judge.Enabled {
		return nil
	}
	if err := validateProvider(&c.Judge.Primary, "JUDGE_PRIMARY"); err != nil {
		return err
	}
	// The fallback provider is optional; validate only when configured.
	if c.Judge.Fallback.BaseURL != "" {
		return validateProvider(&c.Judge.Fallback, "JUDGE_FALLBACK")
	}
	return nil
}

func validateProvider(p *ProviderConfig, prefix string) error {
	if p.APIKey == "" {
		return fmt.Errorf("%s_API_KEY is required when JUDGE_ENABLED=true", prefix)
	}
	if p.Model == "" {
		return fmt.Errorf("%s_MODEL is required when JUDGE_ENABLED=true", prefix)
	}
	if err := validateBaseURL(p.BaseURL, prefix+"_BASE_URL"); err != nil {
		return err
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("%s_TIMEOUT must be positive", prefix)
	}
	return nil
}

// validateBaseURL validates an API base URL. Unlike a bare service
// address, a base URL may carry a path prefix (e.g. "/v1").
func validateBaseURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}

func (c *Config) validateTraining() error {
	if c.Training.MinSamples < 1 {
		return fmt.Errorf("TRAINING_MIN_SAMPLES must be at least 1, got %d", c.Training.MinSamples)
	}
	if c.Training.TestFraction <= 0 || c.Training.TestFraction >= 1 {
		return fmt.Errorf("TRAINING_TEST_FRACTION must be in (0, 1), got %v", c.Training.TestFraction)
	}
	if c.Training.KFolds < 2 {
		return fmt.Errorf("TRAINING_K_FOLDS must be at least 2, got %d", c.Training.KFolds)
	}
	if c.Training.KeepVersions < 1 {
		return fmt.Errorf("TRAINING_KEEP_VERSIONS must be at least 1, got %d", c.Training.KeepVersions)
	}
	if c.Training.Interval < 0 {
		return fmt.Errorf("TRAINING_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateBundles() error {
	if c.Bundles.Dir == "" {
		return fmt.Errorf("BUNDLES_DIR is required")
	}
	return nil
}

func (c *Config) validatePlatforms() error {
	if len(c.Platforms) == 0 {
		return fmt.Errorf("PLATFORMS must list at least one platform")
	}
	for _, p := range c.Platforms {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("PLATFORMS contains an empty entry")
		}
	}
	return nil
}
