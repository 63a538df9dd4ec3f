// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/postpulse/internal/config"
	"github.com/tomtom215/postpulse/internal/features"
	"github.com/tomtom215/postpulse/internal/judge"
	"github.com/tomtom215/postpulse/internal/logging"
)

// newTestDB opens an in-memory DuckDB with the full schema.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

// testRecord builds a schema-complete feature record via the extractor.
func testRecord(t *testing.T, platform, contentID, text string) *features.Record {
	t.Helper()
	e := features.NewExtractor(nil, logging.NewTestLogger())
	rec := e.Compose(features.Input{
		ContentID:  contentID,
		Platform:   platform,
		Text:       text,
		ObservedAt: time.Date(2026, 3, 4, 19, 0, 0, 0, time.UTC),
	}, judge.Default(), features.ProviderDefault)
	return rec
}

func TestFeatureRecordRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec := testRecord(t, "cookie.fun", "post-1", "gm frens 🚀 #bullish @someone")
	if err := db.InsertFeatureRecord(ctx, "user_a", rec); err != nil {
		t.Fatalf("InsertFeatureRecord() error = %v", err)
	}

	got, err := db.GetLatestFeatureRecord(ctx, "cookie.fun", "user_a")
	if err != nil {
		t.Fatalf("GetLatestFeatureRecord() error = %v", err)
	}

	if got.ContentID != "post-1" {
		t.Errorf("ContentID = %q, want post-1", got.ContentID)
	}
	if got.SchemaVersion != features.SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", got.SchemaVersion, features.SchemaVersion)
	}

	// The reconstructed vector must match what the trainer would build
	// from the same row, within fixed-precision storage resolution.
	want := rec.Vector()
	gotVec := got.Vector()
	for i, name := range features.FeatureOrder {
		diff := want[i] - gotVec[i]
		if diff < -0.001 || diff > 0.001 {
			t.Errorf("feature %s: stored %v, want %v", name, gotVec[i], want[i])
		}
	}
	for _, name := range features.CategoricalOrder {
		if got.Categorical[name] != rec.Categorical[name] {
			t.Errorf("categorical %s = %q, want %q",
				name, got.Categorical[name], rec.Categorical[name])
		}
	}
}

func TestGetLatestFeatureRecordNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetLatestFeatureRecord(context.Background(), "cookie.fun", "missing_user")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetLatestFeatureRecordPicksNewest(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	older := testRecord(t, "cookie.fun", "post-old", "first post")
	older.ExtractedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := testRecord(t, "cookie.fun", "post-new", "second post")
	newer.ExtractedAt = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	for _, rec := range []*features.Record{older, newer} {
		if err := db.InsertFeatureRecord(ctx, "user_a", rec); err != nil {
			t.Fatalf("InsertFeatureRecord() error = %v", err)
		}
	}

	got, err := db.GetLatestFeatureRecord(ctx, "cookie.fun", "user_a")
	if err != nil {
		t.Fatalf("GetLatestFeatureRecord() error = %v", err)
	}
	if got.ContentID != "post-new" {
		t.Errorf("ContentID = %q, want post-new", got.ContentID)
	}
}

func TestInsertFeatureRecordIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec := testRecord(t, "cookie.fun", "post-1", "gm")
	for i := 0; i < 2; i++ {
		if err := db.InsertFeatureRecord(ctx, "user_a", rec); err != nil {
			t.Fatalf("insert %d error = %v", i, err)
		}
	}

	var count int
	err := db.Conn().QueryRow(
		"SELECT COUNT(*) FROM feature_records WHERE platform = ? AND content_id = ?",
		"cookie.fun", "post-1",
	).Scan(&count)
	if err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

func TestRawAnalysisFiltersUnusableRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rows := []*RawAnalysis{
		{Platform: "cookie.fun", ContentID: "ok", EntityID: "u1",
			ContentText: "gm", RawJudgment: `{"humor": 5}`, ObservedAt: now},
		{Platform: "cookie.fun", ContentID: "no-text", EntityID: "u2",
			RawJudgment: `{"humor": 5}`, ObservedAt: now},
		{Platform: "cookie.fun", ContentID: "no-judgment", EntityID: "u3",
			ContentText: "gm", ObservedAt: now},
	}
	for _, r := range rows {
		if err := db.InsertRawAnalysis(ctx, r); err != nil {
			t.Fatalf("InsertRawAnalysis(%s) error = %v", r.ContentID, err)
		}
	}

	got, err := db.GetRecentRawAnalysis(ctx, "cookie.fun", 100)
	if err != nil {
		t.Fatalf("GetRecentRawAnalysis() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].ContentID != "ok" {
		t.Errorf("ContentID = %q, want ok", got[0].ContentID)
	}
}

func TestTrainingInsertsAreIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	row := &TrainingRow{
		EntityID:    "user_a",
		PostedAt:    time.Now().UTC(),
		Record:      testRecord(t, "cookie.fun", "post-1", "gm"),
		RewardDelta: 12.5,
		Likes:       3, Retweets: 1, Replies: 2,
	}

	inserted, err := db.InsertTrainingReward(ctx, row)
	if err != nil {
		t.Fatalf("InsertTrainingReward() error = %v", err)
	}
	if !inserted {
		t.Error("first reward insert reported not inserted")
	}

	inserted, err = db.InsertTrainingReward(ctx, row)
	if err != nil {
		t.Fatalf("duplicate InsertTrainingReward() error = %v", err)
	}
	if inserted {
		t.Error("duplicate reward insert reported inserted")
	}

	inserted, err = db.InsertTrainingEngagement(ctx, row)
	if err != nil {
		t.Fatalf("InsertTrainingEngagement() error = %v", err)
	}
	if !inserted {
		t.Error("first engagement insert reported not inserted")
	}
}

func TestTrainingSamplesRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	row := &TrainingRow{
		EntityID:       "user_a",
		PostedAt:       time.Now().UTC(),
		Record:         testRecord(t, "cookie.fun", "post-1", "bullish on btc"),
		RewardDelta:    42.5,
		PositionChange: -3,
		Likes:          10, Retweets: 5, Replies: 2,
	}
	if _, err := db.InsertTrainingReward(ctx, row); err != nil {
		t.Fatalf("InsertTrainingReward() error = %v", err)
	}
	if _, err := db.InsertTrainingEngagement(ctx, row); err != nil {
		t.Fatalf("InsertTrainingEngagement() error = %v", err)
	}

	reward, err := db.GetRewardTrainingSamples(ctx, "cookie.fun")
	if err != nil {
		t.Fatalf("GetRewardTrainingSamples() error = %v", err)
	}
	if len(reward) != 1 {
		t.Fatalf("reward samples = %d, want 1", len(reward))
	}
	if reward[0].RewardDelta != 42.5 {
		t.Errorf("RewardDelta = %v, want 42.5", reward[0].RewardDelta)
	}
	if reward[0].PositionChange != -3 {
		t.Errorf("PositionChange = %v, want -3", reward[0].PositionChange)
	}
	if len(reward[0].Vector) != len(features.FeatureOrder) {
		t.Errorf("vector len = %d, want %d", len(reward[0].Vector), len(features.FeatureOrder))
	}

	engagement, err := db.GetEngagementTrainingSamples(ctx, "cookie.fun")
	if err != nil {
		t.Fatalf("GetEngagementTrainingSamples() error = %v", err)
	}
	if len(engagement) != 1 {
		t.Fatalf("engagement samples = %d, want 1", len(engagement))
	}
	if engagement[0].TotalEngagement != 17 {
		t.Errorf("TotalEngagement = %v, want 17", engagement[0].TotalEngagement)
	}
}
