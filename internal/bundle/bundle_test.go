// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package bundle

import (
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/postpulse/internal/features"
	"github.com/tomtom215/postpulse/internal/training/estimators"
)

func fittedRidge(t *testing.T) *estimators.Ridge {
	t.Helper()
	width := len(features.FeatureOrder) + len(features.CategoricalOrder)
	x := make([][]float64, 40)
	y := make([]float64, 40)
	for i := range x {
		x[i] = make([]float64, width)
		x[i][0] = float64(i)
		y[i] = 2 * float64(i)
	}
	r := estimators.NewRidge(estimators.DefaultRidgeConfig())
	if err := r.Fit(x, y); err != nil {
		t.Fatalf("ridge fit error = %v", err)
	}
	return r
}

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	order := append(append([]string{}, features.FeatureOrder...), features.CategoricalOrder...)
	encoders := make(map[string]*LabelEncoder, len(features.CategoricalOrder))
	encoders[features.CatContentType] = FitEncoder([]string{"meme", "news", "other"})
	encoders[features.CatTargetAudience] = FitEncoder([]string{"general", "degens"})
	encoders[features.CatTone] = FitEncoder([]string{"neutral", "bullish"})
	encoders[features.CatPredictedReaction] = FitEncoder([]string{"moderate", "viral"})

	scaler := &StandardScaler{
		Mean: make([]float64, len(order)),
		Std:  make([]float64, len(order)),
	}
	for i := range scaler.Std {
		scaler.Std[i] = 1
	}

	return &Bundle{
		Platform:      "cookie.fun",
		Family:        FamilyReward,
		SchemaVersion: features.SchemaVersion,
		FeatureOrder:  order,
		Estimators:    map[string]estimators.Estimator{"ridge": fittedRidge(t)},
		Scaler:        scaler,
		Encoders:      encoders,
		SampleCount:   40,
		TrainedAt:     time.Now().UTC(),
		Metrics:       map[string]EvalMetrics{"ridge": {RMSE: 0.1}},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	b := testBundle(t)
	meta, err := store.Save(b)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if meta.Version != 1 {
		t.Errorf("Version = %d, want 1", meta.Version)
	}

	loaded, loadedMeta, err := store.Load("cookie.fun", FamilyReward)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loadedMeta.Checksum != meta.Checksum {
		t.Errorf("Checksum = %q, want %q", loadedMeta.Checksum, meta.Checksum)
	}
	if len(loaded.Estimators) != 1 {
		t.Fatalf("Estimators = %d, want 1", len(loaded.Estimators))
	}

	// the deserialized estimator must predict identically
	probe := make([]float64, len(b.FeatureOrder))
	probe[0] = 5
	want, err := b.Estimators["ridge"].Predict(probe)
	if err != nil {
		t.Fatalf("original Predict() error = %v", err)
	}
	got, err := loaded.Estimators["ridge"].Predict(probe)
	if err != nil {
		t.Fatalf("loaded Predict() error = %v", err)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("loaded prediction %v, want %v", got, want)
	}
}

func TestStoreVersionsIncrement(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	b := testBundle(t)
	for want := 1; want <= 3; want++ {
		meta, err := store.Save(b)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if meta.Version != want {
			t.Errorf("Version = %d, want %d", meta.Version, want)
		}
	}

	if v, ok := store.LatestVersion("cookie.fun", FamilyReward); !ok || v != 3 {
		t.Errorf("LatestVersion = %d, %v; want 3, true", v, ok)
	}
}

func TestStoreRescansExistingBundles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := store.Save(testBundle(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reopen NewStore() error = %v", err)
	}
	if _, _, err := reopened.Load("cookie.fun", FamilyReward); err != nil {
		t.Errorf("Load() after reopen error = %v", err)
	}
}

func TestLoadRejectsSchemaVersionMismatch(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	b := testBundle(t)
	b.SchemaVersion = features.SchemaVersion + 1
	if _, err := store.Save(b); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, _, err = store.Load("cookie.fun", FamilyReward)
	if err == nil || !strings.Contains(err.Error(), "schema version") {
		t.Errorf("Load() error = %v, want schema version rejection", err)
	}
}

func TestPruneKeepsNewestVersions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	b := testBundle(t)
	for i := 0; i < 4; i++ {
		if _, err := store.Save(b); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	if err := store.Prune("cookie.fun", FamilyReward, 2); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var kept []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".gob.gz") {
			kept = append(kept, e.Name())
		}
	}
	if len(kept) != 2 {
		t.Errorf("kept %d files %v, want 2", len(kept), kept)
	}

	// latest must survive
	if _, _, err := store.Load("cookie.fun", FamilyReward); err != nil {
		t.Errorf("Load() after prune error = %v", err)
	}
}

func TestAssembleFollowsBundleOrder(t *testing.T) {
	t.Parallel()

	b := testBundle(t)
	numeric := make([]float64, len(features.FeatureOrder))
	numeric[0] = 42 // char_count slot
	cats := map[string]string{
		features.CatContentType: "meme",
		features.CatTone:        "bullish",
	}

	vec := b.Assemble(numeric, cats)
	if len(vec) != len(b.FeatureOrder) {
		t.Fatalf("Assemble() len = %d, want %d", len(vec), len(b.FeatureOrder))
	}
	if vec[0] != 42 {
		t.Errorf("numeric slot = %v, want 42", vec[0])
	}

	ctIdx := len(features.FeatureOrder) // content_type follows numerics
	if want := b.Encoders[features.CatContentType].Transform("meme"); vec[ctIdx] != want {
		t.Errorf("content_type slot = %v, want %v", vec[ctIdx], want)
	}

	// unknown categorical encodes as 0
	vec2 := b.Assemble(numeric, map[string]string{features.CatContentType: "dance_video"})
	if vec2[ctIdx] != 0 {
		t.Errorf("unknown categorical slot = %v, want 0", vec2[ctIdx])
	}
}

func TestScalerRoundTrip(t *testing.T) {
	t.Parallel()

	x := [][]float64{{1, 10}, {2, 10}, {3, 10}}
	s := FitScaler(x)

	if s.Mean[0] != 2 {
		t.Errorf("Mean[0] = %v, want 2", s.Mean[0])
	}
	// constant column passes through unscaled
	if s.Std[1] != 1 {
		t.Errorf("Std[1] = %v, want 1", s.Std[1])
	}

	scaled := s.TransformMatrix(x)
	var sum float64
	for _, row := range scaled {
		sum += row[0]
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("scaled column mean = %v, want 0", sum/3)
	}
}

func TestLabelEncoderDeterministicOrder(t *testing.T) {
	t.Parallel()

	a := FitEncoder([]string{"viral", "weak", "moderate", "viral"})
	b := FitEncoder([]string{"moderate", "viral", "weak"})

	if len(a.Classes) != 3 {
		t.Fatalf("Classes = %d, want 3", len(a.Classes))
	}
	for i := range a.Classes {
		if a.Classes[i] != b.Classes[i] {
			t.Errorf("class order differs at %d: %q vs %q", i, a.Classes[i], b.Classes[i])
		}
	}
	if a.Transform("nonexistent") != 0 {
		t.Errorf("unknown value code = %v, want 0", a.Transform("nonexistent"))
	}
}
