// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package database

import (
	"context"
	"fmt"
	"time"
)

// RawAnalysis mirrors one row of the raw analysis store: the content,
// the stored LLM judgment blob, and the outcome labels captured as of
// posting time. Outcome fields are ground truth and are never
// recomputed after insert.
type RawAnalysis struct {
	Platform       string
	ContentID      string
	EntityID       string
	ContentText    string
	RawJudgment    string
	LLMProvider    string
	ObservedAt     time.Time
	Likes          int
	Retweets       int
	Replies        int
	RewardDelta    float64
	PositionChange int
	FollowerCount  int
	Campaign       string
}

// InsertRawAnalysis stores one analyzed content item. Duplicate
// (platform, content_id) inserts are no-ops.
func (db *DB) InsertRawAnalysis(ctx context.Context, row *RawAnalysis) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO raw_analysis (
			platform, content_id, entity_id, content_text, raw_judgment,
			llm_provider, observed_at, likes, retweets, replies,
			reward_delta, position_change, follower_count, campaign
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.Platform, row.ContentID, row.EntityID, row.ContentText,
		row.RawJudgment, row.LLMProvider, row.ObservedAt.UTC(),
		row.Likes, row.Retweets, row.Replies,
		row.RewardDelta, row.PositionChange, row.FollowerCount, row.Campaign,
	)
	observe("insert", "raw_analysis", start, err)
	if err != nil {
		return fmt.Errorf("insert raw_analysis %s/%s: %w", row.Platform, row.ContentID, err)
	}
	return nil
}

// GetRecentRawAnalysis returns up to limit most-recent rows for a
// platform that carry both content text and a stored judgment blob.
// Rows missing either are useless to ETL and are filtered here.
func (db *DB) GetRecentRawAnalysis(ctx context.Context, platform string, limit int) ([]RawAnalysis, error) {
	if limit <= 0 {
		limit = 1000
	}
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT platform, content_id, entity_id, content_text, raw_judgment,
		       llm_provider, observed_at, likes, retweets, replies,
		       reward_delta, position_change, follower_count, campaign
		FROM raw_analysis
		WHERE platform = ?
		  AND content_text IS NOT NULL AND content_text != ''
		  AND raw_judgment IS NOT NULL AND raw_judgment != ''
		ORDER BY observed_at DESC
		LIMIT ?`,
		platform, limit,
	)
	observe("select", "raw_analysis", start, err)
	if err != nil {
		return nil, fmt.Errorf("query raw_analysis for %s: %w", platform, err)
	}
	defer closeWithLog(rows, "raw_analysis rows")

	var out []RawAnalysis
	for rows.Next() {
		var r RawAnalysis
		if err := rows.Scan(
			&r.Platform, &r.ContentID, &r.EntityID, &r.ContentText,
			&r.RawJudgment, &r.LLMProvider, &r.ObservedAt,
			&r.Likes, &r.Retweets, &r.Replies,
			&r.RewardDelta, &r.PositionChange, &r.FollowerCount, &r.Campaign,
		); err != nil {
			return nil, fmt.Errorf("scan raw_analysis row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw_analysis rows: %w", err)
	}
	return out, nil
}
