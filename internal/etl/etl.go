// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

/*
etl.go - Training-data population from stored raw analysis

Replays stored LLM judgment blobs into feature records and training
rows without issuing a single new LLM call. Features are re-derived
deterministically from the stored content text and judgment, so
repeated runs over the same raw rows produce identical feature values
and the idempotent inserts make re-runs no-ops.

A blob that no longer parses is skipped and logged, never defaulted:
defaulted scores are acceptable on the live extraction path, but
silently injecting them into ground-truth training data is not.
*/

package etl

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postpulse/internal/database"
	"github.com/tomtom215/postpulse/internal/features"
	"github.com/tomtom215/postpulse/internal/judge"
	"github.com/tomtom215/postpulse/internal/metrics"
)

// Config contains ETL configuration.
type Config struct {
	// BatchLimit caps how many raw rows one run reads per platform.
	BatchLimit int
}

// DefaultConfig returns the default ETL configuration.
func DefaultConfig() Config {
	return Config{BatchLimit: 1000}
}

// Result summarizes one population run.
type Result struct {
	// RecordsFound is how many usable raw rows the run read.
	RecordsFound int `json:"records_found"`
	// RecordsProcessed is how many rows made it into the training
	// tables. Rows with unparseable judgments are found but not
	// processed.
	RecordsProcessed int `json:"records_processed"`
}

// ETL populates feature records and training tables from raw analysis.
type ETL struct {
	db        *database.DB
	extractor *features.Extractor
	cfg       Config
	logger    zerolog.Logger
}

// New creates an ETL run scoped to one database.
func New(db *database.DB, cfg Config, logger zerolog.Logger) *ETL {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 1000
	}
	return &ETL{
		db:        db,
		extractor: features.NewExtractor(nil, logger),
		cfg:       cfg,
		logger:    logger.With().Str("component", "etl").Logger(),
	}
}

// PopulateFromExistingAnalysis replays every usable raw analysis row
// for a platform into feature records and both training tables in one
// pass. Per-row failures are isolated; the run continues.
func (e *ETL) PopulateFromExistingAnalysis(ctx context.Context, platform string) (*Result, error) {
	rows, err := e.db.GetRecentRawAnalysis(ctx, platform, e.cfg.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("load raw analysis: %w", err)
	}

	result := &Result{RecordsFound: len(rows)}
	metrics.ETLRowsFound.WithLabelValues(platform).Add(float64(len(rows)))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if e.processRow(ctx, &row) {
			result.RecordsProcessed++
		}
	}

	metrics.ETLRowsProcessed.WithLabelValues(platform).Add(float64(result.RecordsProcessed))
	e.logger.Info().
		Str("platform", platform).
		Int("found", result.RecordsFound).
		Int("processed", result.RecordsProcessed).
		Msg("Training data population complete")
	return result, nil
}

// processRow re-derives one raw row's features and appends its
// training rows. Returns whether the row counts as processed.
func (e *ETL) processRow(ctx context.Context, row *database.RawAnalysis) bool {
	// Rows judged by the neutral default carry no provider signal.
	// Ingest stores them without a blob, but older rows may still have
	// one; either way they never become training data.
	if row.LLMProvider == features.ProviderDefault {
		metrics.ETLRowsSkipped.WithLabelValues(row.Platform, "defaulted").Inc()
		e.logger.Debug().
			Str("platform", row.Platform).
			Str("content_id", row.ContentID).
			Msg("Defaulted judgment, row excluded from training")
		return false
	}

	j, err := judge.Parse([]byte(row.RawJudgment))
	if err != nil {
		metrics.ETLRowsSkipped.WithLabelValues(row.Platform, "parse_error").Inc()
		e.logger.Warn().
			Err(err).
			Str("platform", row.Platform).
			Str("content_id", row.ContentID).
			Msg("Stored judgment no longer parses, row skipped")
		return false
	}

	rec := e.extractor.Compose(features.Input{
		ContentID:  row.ContentID,
		Platform:   row.Platform,
		Text:       row.ContentText,
		ObservedAt: row.ObservedAt,
	}, j, row.LLMProvider)

	if err := e.db.InsertFeatureRecord(ctx, row.EntityID, rec); err != nil {
		metrics.ETLRowsSkipped.WithLabelValues(row.Platform, "insert_error").Inc()
		e.logger.Warn().Err(err).Str("content_id", row.ContentID).Msg("Feature record insert failed")
		return false
	}

	trainingRow := &database.TrainingRow{
		EntityID:       row.EntityID,
		PostedAt:       row.ObservedAt,
		Record:         rec,
		FollowerCount:  row.FollowerCount,
		Campaign:       row.Campaign,
		RewardDelta:    row.RewardDelta,
		PositionChange: row.PositionChange,
		Likes:          row.Likes,
		Retweets:       row.Retweets,
		Replies:        row.Replies,
	}
	if _, err := e.db.InsertTrainingReward(ctx, trainingRow); err != nil {
		metrics.ETLRowsSkipped.WithLabelValues(row.Platform, "insert_error").Inc()
		e.logger.Warn().Err(err).Str("content_id", row.ContentID).Msg("Reward training insert failed")
		return false
	}
	if _, err := e.db.InsertTrainingEngagement(ctx, trainingRow); err != nil {
		metrics.ETLRowsSkipped.WithLabelValues(row.Platform, "insert_error").Inc()
		e.logger.Warn().Err(err).Str("content_id", row.ContentID).Msg("Engagement training insert failed")
		return false
	}
	return true
}
