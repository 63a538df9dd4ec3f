// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

// Package config provides layered configuration loading.
//
// Precedence, highest last: struct defaults, optional YAML config file,
// environment variables. Load is the single entry point; every
// component receives its section from the loaded Config rather than
// reading the environment itself.
package config

import (
	"time"
)

// Config is the root configuration for the PostPulse server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
	Judge    JudgeConfig    `koanf:"judge"`
	ETL      ETLConfig      `koanf:"etl"`
	Training TrainingConfig `koanf:"training"`
	Bundles  BundlesConfig  `koanf:"bundles"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Security SecurityConfig `koanf:"security"`

	// Platforms lists the attention-market platforms this deployment
	// serves, e.g. "cookie.fun". Training, registry loading and the
	// models status endpoint iterate this list.
	Platforms []string `koanf:"platforms"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file. Empty means in-memory, used by tests.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use runtime.NumCPU()
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// ProviderConfig holds one OpenAI-compatible LLM provider endpoint.
type ProviderConfig struct {
	Name    string        `koanf:"name"`
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// JudgeConfig holds LLM judging settings for the precomputation path.
// The serving path never touches these providers.
type JudgeConfig struct {
	// Enabled turns LLM judging on. When false, extraction uses the
	// neutral default judgment and the system runs fully offline.
	Enabled bool `koanf:"enabled"`

	Primary  ProviderConfig `koanf:"primary"`
	Fallback ProviderConfig `koanf:"fallback"`

	// RequestsPerMinute rate-limits outbound provider calls.
	// Zero disables rate limiting.
	RequestsPerMinute int `koanf:"requests_per_minute"`
}

// ETLConfig holds training-data population settings.
type ETLConfig struct {
	// BatchLimit caps raw rows read per platform per run.
	BatchLimit int `koanf:"batch_limit"`
}

// TrainingConfig holds ensemble trainer settings.
type TrainingConfig struct {
	MinSamples   int           `koanf:"min_samples"`
	TestFraction float64       `koanf:"test_fraction"`
	Seed         int64         `koanf:"seed"`
	KFolds       int           `koanf:"k_folds"`
	KeepVersions int           `koanf:"keep_versions"`
	Interval     time.Duration `koanf:"interval"` // periodic retraining cadence
}

// BundlesConfig holds model bundle storage settings.
type BundlesConfig struct {
	// Dir is the directory holding persisted model bundles.
	Dir string `koanf:"dir"`
}

// IngestConfig holds the in-process content ingestion pipeline
// settings.
type IngestConfig struct {
	// BufferSize is the channel capacity between the publisher and the
	// extraction handler.
	BufferSize int `koanf:"buffer_size"`

	// Workers is the number of concurrent extraction handlers.
	Workers int `koanf:"workers"`

	// CloseTimeout bounds router shutdown.
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// SecurityConfig holds HTTP middleware settings.
type SecurityConfig struct {
	// CORSOrigins lists allowed origins. Empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimit is requests per minute per client IP. Zero disables
	// rate limiting.
	RateLimit int `koanf:"rate_limit"`
}
