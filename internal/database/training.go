// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/postpulse/internal/features"
)

// TrainingRow is one append-only training observation: the extracted
// features plus the outcome labels and posting-time context. Context
// fields (follower_count, campaign) are ground truth captured as of
// posting and are stored for audit; they are not part of the feature
// vector because the serving path cannot reproduce them.
type TrainingRow struct {
	EntityID      string
	PostedAt      time.Time
	Record        *features.Record
	FollowerCount int
	Campaign      string

	// Reward family targets.
	RewardDelta    float64
	PositionChange int

	// Engagement family targets.
	Likes    int
	Retweets int
	Replies  int
}

// TotalEngagement is the engagement-family regression target.
func (r *TrainingRow) TotalEngagement() int {
	return r.Likes + r.Retweets + r.Replies
}

// TrainingSample is one row as consumed by the trainer: the numeric
// vector in canonical order, the raw categorical values, and every
// target for the row's family.
type TrainingSample struct {
	Vector          []float64
	Categoricals    map[string]string
	SchemaVersion   int
	RewardDelta     float64
	PositionChange  int
	TotalEngagement float64
}

// InsertTrainingReward appends one reward-family row. Returns false
// when the (platform, content_id) key already exists.
func (db *DB) InsertTrainingReward(ctx context.Context, row *TrainingRow) (bool, error) {
	cols := append([]string{
		"platform", "content_id", "entity_id", "posted_at", "schema_version",
	}, featureColumns...)
	cols = append(cols, "follower_count", "campaign", "reward_delta", "position_change")

	vals := append([]any{
		row.Record.Platform, row.Record.ContentID, row.EntityID,
		row.PostedAt.UTC(), row.Record.SchemaVersion,
	}, featureValues(row.Record)...)
	vals = append(vals, row.FollowerCount, row.Campaign, row.RewardDelta, row.PositionChange)

	return db.insertTraining(ctx, "training_reward", cols, vals)
}

// InsertTrainingEngagement appends one engagement-family row. Returns
// false when the (platform, content_id) key already exists.
func (db *DB) InsertTrainingEngagement(ctx context.Context, row *TrainingRow) (bool, error) {
	cols := append([]string{
		"platform", "content_id", "entity_id", "posted_at", "schema_version",
	}, featureColumns...)
	cols = append(cols, "follower_count", "campaign", "likes", "retweets", "replies", "total_engagement")

	vals := append([]any{
		row.Record.Platform, row.Record.ContentID, row.EntityID,
		row.PostedAt.UTC(), row.Record.SchemaVersion,
	}, featureValues(row.Record)...)
	vals = append(vals, row.FollowerCount, row.Campaign,
		row.Likes, row.Retweets, row.Replies, row.TotalEngagement())

	return db.insertTraining(ctx, "training_engagement", cols, vals)
}

func (db *DB) insertTraining(ctx context.Context, table string, cols []string, vals []any) (bool, error) {
	query := fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders(len(cols)),
	)

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, query, vals...)
	observe("insert", table, start, err)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for %s: %w", table, err)
	}
	return affected > 0, nil
}

// GetRewardTrainingSamples loads every reward-family row for a
// platform in insertion-stable order.
func (db *DB) GetRewardTrainingSamples(ctx context.Context, platform string) ([]TrainingSample, error) {
	query := fmt.Sprintf(`
		SELECT schema_version, %s, reward_delta, position_change
		FROM training_reward
		WHERE platform = ?
		ORDER BY posted_at, content_id`,
		selectFeatureColumns(),
	)
	return db.queryTrainingSamples(ctx, "training_reward", query, platform, func(s *TrainingSample, extra []any) {
		s.RewardDelta = *(extra[0].(*float64))
		s.PositionChange = *(extra[1].(*int))
	}, func() []any {
		return []any{new(float64), new(int)}
	})
}

// GetEngagementTrainingSamples loads every engagement-family row for a
// platform in insertion-stable order.
func (db *DB) GetEngagementTrainingSamples(ctx context.Context, platform string) ([]TrainingSample, error) {
	query := fmt.Sprintf(`
		SELECT schema_version, %s, total_engagement
		FROM training_engagement
		WHERE platform = ?
		ORDER BY posted_at, content_id`,
		selectFeatureColumns(),
	)
	return db.queryTrainingSamples(ctx, "training_engagement", query, platform, func(s *TrainingSample, extra []any) {
		s.TotalEngagement = float64(*(extra[0].(*int)))
	}, func() []any {
		return []any{new(int)}
	})
}

// queryTrainingSamples runs one training-table query and scans rows
// into samples. newExtra allocates scan targets for the trailing
// target columns; assign copies them onto the sample.
func (db *DB) queryTrainingSamples(
	ctx context.Context,
	table, query, platform string,
	assign func(*TrainingSample, []any),
	newExtra func() []any,
) ([]TrainingSample, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, platform)
	observe("select", table, start, err)
	if err != nil {
		return nil, fmt.Errorf("query %s for %s: %w", table, platform, err)
	}
	defer closeWithLog(rows, table+" rows")

	var out []TrainingSample
	for rows.Next() {
		sample := TrainingSample{
			Vector:       make([]float64, len(features.FeatureOrder)),
			Categoricals: make(map[string]string, len(features.CategoricalOrder)),
		}
		categoricals := make([]string, len(features.CategoricalOrder))

		dest := []any{&sample.SchemaVersion}
		for i := range sample.Vector {
			dest = append(dest, &sample.Vector[i])
		}
		for i := range categoricals {
			dest = append(dest, &categoricals[i])
		}
		extra := newExtra()
		dest = append(dest, extra...)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		for i, name := range features.CategoricalOrder {
			sample.Categoricals[name] = categoricals[i]
		}
		assign(&sample, extra)
		out = append(out, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", table, err)
	}
	return out, nil
}
