// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

// Package main is the entry point for the PostPulse server.
//
// PostPulse predicts content performance on attention-market platforms:
// expected reward deltas, leaderboard position movement, and engagement
// counts. Serving is millisecond-latency and never calls an LLM; judged
// features are precomputed by the ingest pipeline and models are trained
// offline from accumulated outcomes.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered loading from defaults, config file, and
//     environment variables (Koanf v2)
//  2. Database: DuckDB holding raw analyses, feature records, and
//     training samples
//  3. Bundle store and registry: persisted model bundles loaded into
//     memory per (platform, family)
//  4. Judge: optional OpenAI-compatible providers for feature scoring
//     during ingestion (never on the serving path)
//  5. Ingest pipeline: Watermill pub/sub feeding feature extraction
//  6. Training scheduler: periodic retraining with hot model reload
//  7. HTTP server: prediction, training, and pipeline endpoints
//
// All long-running components run under a suture supervision tree so a
// crashed worker restarts without taking the process down.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults.
//
// Minimal offline deployment (no LLM judging):
//
//	export POSTPULSE_DATABASE_PATH=/data/postpulse.duckdb
//	export POSTPULSE_BUNDLES_DIR=/data/bundles
//	export POSTPULSE_PLATFORMS=cookie.fun
//	./postpulse
//
// With LLM judging enabled:
//
//	export POSTPULSE_JUDGE_ENABLED=true
//	export POSTPULSE_JUDGE_PRIMARY_BASE_URL=https://api.openai.com/v1
//	export POSTPULSE_JUDGE_PRIMARY_API_KEY=sk-...
//	export POSTPULSE_JUDGE_PRIMARY_MODEL=gpt-4o-mini
//	./postpulse
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server drains in-flight requests, the ingest pipeline finishes queued
// messages within its close timeout, and the training scheduler stops
// between runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postpulse/internal/api"
	"github.com/tomtom215/postpulse/internal/bundle"
	"github.com/tomtom215/postpulse/internal/config"
	"github.com/tomtom215/postpulse/internal/database"
	"github.com/tomtom215/postpulse/internal/etl"
	"github.com/tomtom215/postpulse/internal/features"
	"github.com/tomtom215/postpulse/internal/ingest"
	"github.com/tomtom215/postpulse/internal/judge"
	"github.com/tomtom215/postpulse/internal/logging"
	"github.com/tomtom215/postpulse/internal/predictor"
	"github.com/tomtom215/postpulse/internal/registry"
	"github.com/tomtom215/postpulse/internal/supervisor"
	"github.com/tomtom215/postpulse/internal/supervisor/services"
	"github.com/tomtom215/postpulse/internal/training"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Strs("platforms", cfg.Platforms).
		Bool("judge_enabled", cfg.Judge.Enabled).
		Msg("Starting PostPulse server")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database")
		}
	}()

	store, err := bundle.NewStore(cfg.Bundles.Dir)
	if err != nil {
		return fmt.Errorf("initialize bundle store: %w", err)
	}

	reg := registry.New(store, logger)
	for _, platform := range cfg.Platforms {
		loaded := reg.Load(platform)
		logger.Info().
			Str("platform", platform).
			Int("models_loaded", loaded).
			Msg("Loaded persisted model bundles")
	}

	j, err := buildJudge(&cfg.Judge, logger)
	if err != nil {
		return fmt.Errorf("initialize judge: %w", err)
	}

	extractor := features.NewExtractor(j, logger)
	pipeline := ingest.New(db, extractor, cfg.Ingest, logger)

	trainer := training.New(db, store, training.Config{
		MinSamples:   cfg.Training.MinSamples,
		TestFraction: cfg.Training.TestFraction,
		Seed:         cfg.Training.Seed,
		KFolds:       cfg.Training.KFolds,
		KeepVersions: cfg.Training.KeepVersions,
	}, logger)
	scheduler := training.NewScheduler(trainer, reg, cfg.Platforms, cfg.Training.Interval, logger)

	pred := predictor.New(db, reg, logger)
	populator := etl.New(db, etl.Config{BatchLimit: cfg.ETL.BatchLimit}, logger)

	handler := api.NewHandler(db, pred, trainer, populator, reg, pipeline, cfg.Platforms, logger)
	mw := api.NewMiddleware(api.NewMiddlewareConfigFromSecurity(&cfg.Security))
	router := api.NewRouter(handler, mw)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(slogLogger(cfg.Logging.Level), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("build supervision tree: %w", err)
	}
	tree.AddPipelineService(services.NewRunnerService("ingest-pipeline", pipeline))
	tree.AddPipelineService(services.NewStartStopService("training-scheduler", scheduler))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := tree.ServeBackground(ctx)
	logger.Info().Str("addr", server.Addr).Msg("PostPulse server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervision tree exited with error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("supervision tree: %w", err)
		}
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logger.Warn().Str("service", svc.Name).Msg("Service did not stop cleanly")
		}
	}

	logger.Info().Msg("PostPulse server stopped")
	return nil
}

// buildJudge assembles the LLM judge from configuration. A disabled
// judge returns nil, which the extractor treats as "always use the
// neutral default judgment".
func buildJudge(cfg *config.JudgeConfig, logger zerolog.Logger) (*judge.Judge, error) {
	if !cfg.Enabled {
		logger.Info().Msg("LLM judging disabled, extraction uses neutral defaults")
		return nil, nil
	}

	primary, err := judge.NewClient(judge.ClientConfig{
		Name:    cfg.Primary.Name,
		BaseURL: cfg.Primary.BaseURL,
		APIKey:  cfg.Primary.APIKey,
		Model:   cfg.Primary.Model,
		Timeout: cfg.Primary.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("primary provider: %w", err)
	}

	var fallback judge.Provider
	if cfg.Fallback.BaseURL != "" {
		fb, err := judge.NewClient(judge.ClientConfig{
			Name:    cfg.Fallback.Name,
			BaseURL: cfg.Fallback.BaseURL,
			APIKey:  cfg.Fallback.APIKey,
			Model:   cfg.Fallback.Model,
			Timeout: cfg.Fallback.Timeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("fallback provider: %w", err)
		}
		fallback = fb
	}

	return judge.New(primary, fallback, judge.Config{
		RequestsPerMinute: cfg.RequestsPerMinute,
	}, logger), nil
}

// slogLogger builds the slog logger the supervision tree logs through.
// Suture reports supervisor events via slog, everything else in the
// process uses zerolog.
func slogLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "trace", "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
