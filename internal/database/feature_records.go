// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/postpulse/internal/features"
)

// featureColumns is the shared column list for the feature-bearing
// tables, derived once from the canonical orderings.
var featureColumns = append(append([]string{}, features.FeatureOrder...), features.CategoricalOrder...)

// featureValues flattens a record's features in column order, clamping
// numerics on the way out so fixed-precision columns never see
// out-of-range input.
func featureValues(rec *features.Record) []any {
	vals := make([]any, 0, len(featureColumns))
	for _, name := range features.FeatureOrder {
		vals = append(vals, features.Clamp(name, rec.Numeric[name]))
	}
	for _, name := range features.CategoricalOrder {
		vals = append(vals, rec.Categorical[name])
	}
	return vals
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// selectFeatureColumns renders the feature column list for SELECTs.
// DECIMAL columns are cast to DOUBLE so they scan cleanly into float64.
func selectFeatureColumns() string {
	parts := make([]string, 0, len(featureColumns))
	for _, name := range features.FeatureOrder {
		parts = append(parts, fmt.Sprintf("CAST(%s AS DOUBLE)", name))
	}
	parts = append(parts, features.CategoricalOrder...)
	return strings.Join(parts, ", ")
}

// InsertFeatureRecord persists one extraction pass. Duplicate
// (platform, content_id) inserts are no-ops; reprocessed content gets
// a new content_id rather than an update.
func (db *DB) InsertFeatureRecord(ctx context.Context, entityID string, rec *features.Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("feature record invalid: %w", err)
	}

	cols := append([]string{
		"platform", "content_id", "entity_id", "extracted_at",
		"llm_provider", "schema_version",
	}, featureColumns...)

	vals := append([]any{
		rec.Platform, rec.ContentID, entityID, rec.ExtractedAt.UTC(),
		rec.LLMProvider, rec.SchemaVersion,
	}, featureValues(rec)...)

	query := fmt.Sprintf(
		"INSERT OR IGNORE INTO feature_records (%s) VALUES (%s)",
		strings.Join(cols, ", "), placeholders(len(cols)),
	)

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query, vals...)
	observe("insert", "feature_records", start, err)
	if err != nil {
		return fmt.Errorf("insert feature_records %s/%s: %w", rec.Platform, rec.ContentID, err)
	}
	return nil
}

// GetLatestFeatureRecord returns the most recent feature record for an
// entity on a platform, or ErrNotFound. The predictor serves from this
// lookup and never re-derives features.
func (db *DB) GetLatestFeatureRecord(ctx context.Context, platform, entityID string) (*features.Record, error) {
	query := fmt.Sprintf(`
		SELECT content_id, extracted_at, llm_provider, schema_version, %s
		FROM feature_records
		WHERE platform = ? AND entity_id = ?
		ORDER BY extracted_at DESC
		LIMIT 1`,
		selectFeatureColumns(),
	)

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, platform, entityID)

	rec := &features.Record{
		Platform:    platform,
		Numeric:     make(map[string]float64, len(features.FeatureOrder)),
		Categorical: make(map[string]string, len(features.CategoricalOrder)),
	}

	numerics := make([]float64, len(features.FeatureOrder))
	categoricals := make([]string, len(features.CategoricalOrder))

	dest := []any{&rec.ContentID, &rec.ExtractedAt, &rec.LLMProvider, &rec.SchemaVersion}
	for i := range numerics {
		dest = append(dest, &numerics[i])
	}
	for i := range categoricals {
		dest = append(dest, &categoricals[i])
	}

	err := row.Scan(dest...)
	observe("select", "feature_records", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan feature_records %s/%s: %w", platform, entityID, err)
	}

	for i, name := range features.FeatureOrder {
		rec.Numeric[name] = numerics[i]
	}
	for i, name := range features.CategoricalOrder {
		rec.Categorical[name] = categoricals[i]
	}
	return rec, nil
}
