// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/postpulse/config.yaml",
	"/etc/postpulse/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied. Defaults
// load first, then the config file, then environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/postpulse.duckdb",
			MaxMemory: "2GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Judge: JudgeConfig{
			Enabled: false, // offline by default; extraction falls back to neutral scores
			Primary: ProviderConfig{
				Name:    "openai",
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
				Timeout: 20 * time.Second,
			},
			Fallback: ProviderConfig{
				Name:    "anthropic",
				BaseURL: "https://api.anthropic.com/v1",
				Model:   "claude-3-5-haiku-latest",
				Timeout: 20 * time.Second,
			},
			RequestsPerMinute: 60,
		},
		ETL: ETLConfig{
			BatchLimit: 1000,
		},
		Training: TrainingConfig{
			MinSamples:   25,
			TestFraction: 0.2,
			Seed:         42,
			KFolds:       5,
			KeepVersions: 3,
			Interval:     6 * time.Hour,
		},
		Bundles: BundlesConfig{
			Dir: "/data/bundles",
		},
		Ingest: IngestConfig{
			BufferSize:   256,
			Workers:      4,
			CloseTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins: nil,
			RateLimit:   100,
		},
		Platforms: []string{"cookie.fun"},
	}
}

// Load builds the configuration with precedence ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when supplied through environment variables.
var sliceConfigPaths = []string{
	"platforms",
	"security.cors_origins",
}

// processSliceFields converts comma-separated strings to slices for
// the known slice fields. Env vars arrive as plain strings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults).
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - JUDGE_PRIMARY_API_KEY -> judge.primary.api_key
//   - TRAINING_MIN_SAMPLES -> training.min_samples
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":   "server.port",
		"http_host":   "server.host",
		"environment": "server.environment",

		// Database mappings
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Judge mappings
		"judge_enabled":             "judge.enabled",
		"judge_requests_per_minute": "judge.requests_per_minute",
		"judge_primary_name":        "judge.primary.name",
		"judge_primary_base_url":    "judge.primary.base_url",
		"judge_primary_api_key":     "judge.primary.api_key",
		"judge_primary_model":       "judge.primary.model",
		"judge_primary_timeout":     "judge.primary.timeout",
		"judge_fallback_name":       "judge.fallback.name",
		"judge_fallback_base_url":   "judge.fallback.base_url",
		"judge_fallback_api_key":    "judge.fallback.api_key",
		"judge_fallback_model":      "judge.fallback.model",
		"judge_fallback_timeout":    "judge.fallback.timeout",

		// ETL mappings
		"etl_batch_limit": "etl.batch_limit",

		// Training mappings
		"training_min_samples":   "training.min_samples",
		"training_test_fraction": "training.test_fraction",
		"training_seed":          "training.seed",
		"training_k_folds":       "training.k_folds",
		"training_keep_versions": "training.keep_versions",
		"training_interval":      "training.interval",

		// Bundle storage mappings
		"bundles_dir": "bundles.dir",

		// Ingest mappings
		"ingest_buffer_size":   "ingest.buffer_size",
		"ingest_workers":       "ingest.workers",
		"ingest_close_timeout": "ingest.close_timeout",

		// Security mappings
		"cors_origins": "security.cors_origins",
		"rate_limit":   "security.rate_limit",

		// Platform list
		"platforms": "platforms",
	}

	if path, ok := envMappings[key]; ok {
		return path
	}
	// Unknown variables are ignored rather than mapped blindly; this
	// keeps unrelated environment noise out of the config tree.
	return ""
}
