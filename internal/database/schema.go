// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

/*
schema.go - Database Schema Management

Tables:
  - raw_analysis: one row per analyzed content item, holding the raw LLM
    judgment blob, the content text, observed engagement, and outcome
    labels captured as of posting time. Written by ingest, read by ETL.
  - feature_records: schema-complete extracted features, one column per
    numeric feature name. Written by ingest and ETL, read by the
    predictor via the latest-per-entity lookup.
  - training_reward: feature columns plus reward/position targets.
  - training_engagement: feature columns plus engagement-count targets.

The three feature-bearing tables share the same generated column block
so the stored layout cannot drift from features.FeatureOrder. Numeric
feature columns are fixed-precision DECIMAL; every value must be
clamped before insert.
*/
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/postpulse/internal/features"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// featureColumnDDL renders one DECIMAL column per numeric feature plus
// the categorical TEXT columns, in canonical order.
func featureColumnDDL() string {
	var b strings.Builder
	for _, name := range features.FeatureOrder {
		fmt.Fprintf(&b, "\t%s DECIMAL(9,3) NOT NULL,\n", name)
	}
	for _, name := range features.CategoricalOrder {
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL,\n", name)
	}
	return b.String()
}

func tableCreationQueries() []string {
	featureCols := featureColumnDDL()

	return []string{
		`CREATE TABLE IF NOT EXISTS raw_analysis (
			platform TEXT NOT NULL,
			content_id TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			content_text TEXT,
			raw_judgment TEXT,
			llm_provider TEXT,
			observed_at TIMESTAMP NOT NULL,
			likes INTEGER DEFAULT 0,
			retweets INTEGER DEFAULT 0,
			replies INTEGER DEFAULT 0,
			reward_delta DOUBLE DEFAULT 0,
			position_change INTEGER DEFAULT 0,
			follower_count INTEGER DEFAULT 0,
			campaign TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (platform, content_id)
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS feature_records (
			platform TEXT NOT NULL,
			content_id TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			extracted_at TIMESTAMP NOT NULL,
			llm_provider TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
%s			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (platform, content_id)
		)`, featureCols),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS training_reward (
			platform TEXT NOT NULL,
			content_id TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			posted_at TIMESTAMP NOT NULL,
			schema_version INTEGER NOT NULL,
%s			follower_count INTEGER NOT NULL,
			campaign TEXT NOT NULL,
			reward_delta DOUBLE NOT NULL,
			position_change INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (platform, content_id)
		)`, featureCols),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS training_engagement (
			platform TEXT NOT NULL,
			content_id TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			posted_at TIMESTAMP NOT NULL,
			schema_version INTEGER NOT NULL,
%s			follower_count INTEGER NOT NULL,
			campaign TEXT NOT NULL,
			likes INTEGER NOT NULL,
			retweets INTEGER NOT NULL,
			replies INTEGER NOT NULL,
			total_engagement INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (platform, content_id)
		)`, featureCols),

		`CREATE INDEX IF NOT EXISTS idx_raw_analysis_observed
			ON raw_analysis (platform, observed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_feature_records_entity
			ON feature_records (platform, entity_id, extracted_at DESC)`,
	}
}
