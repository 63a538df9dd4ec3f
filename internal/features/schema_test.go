// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package features

import (
	"math"
	"testing"
)

func TestFeatureOrderHasNoDuplicates(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool, len(FeatureOrder))
	for _, name := range FeatureOrder {
		if seen[name] {
			t.Errorf("duplicate feature name %q", name)
		}
		seen[name] = true
	}
}

func TestEveryFeatureHasBounds(t *testing.T) {
	t.Parallel()

	for _, name := range FeatureOrder {
		if _, ok := bounds[name]; !ok {
			t.Errorf("feature %q has no bounds entry", name)
		}
	}
	for name := range bounds {
		if !containsString(FeatureOrder, name) {
			t.Errorf("bounds entry %q is not in FeatureOrder", name)
		}
	}
}

func TestBoundsFitStorageColumns(t *testing.T) {
	t.Parallel()

	// Feature columns are DECIMAL(9,3); any clamped value must fit.
	const columnMax = 999999.999
	for name, b := range bounds {
		if b.Max > columnMax {
			t.Errorf("feature %q max %v exceeds column range %v", name, b.Max, columnMax)
		}
		if b.Min < -columnMax {
			t.Errorf("feature %q min %v exceeds column range %v", name, b.Min, -columnMax)
		}
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		feature string
		in      float64
		want    float64
	}{
		{"in range untouched", FeatSentimentPolarity, 0.5, 0.5},
		{"above max", FeatHumor, 14, 10},
		{"below min", FeatSentimentPolarity, -3, -1},
		{"nan collapses to min", FeatHumor, math.NaN(), 0},
		{"inf collapses to min", FeatSentimentPolarity, math.Inf(1), -1},
		{"negative count", FeatHashtagCount, -2, 0},
		{"count above storage range", FeatCharCount, 2e6, 999999.999},
		{"hour above range", FeatHourOfDay, 24, 23},
		{"unknown name clamps negative", "no_such_feature", -1, 0},
		{"unknown name clamps to storage range", "no_such_feature", 2e6, 999999.999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clamp(tt.feature, tt.in); got != tt.want {
				t.Errorf("Clamp(%q, %v) = %v, want %v", tt.feature, tt.in, got, tt.want)
			}
		})
	}
}

func TestRecordVectorFollowsFeatureOrder(t *testing.T) {
	t.Parallel()

	rec := &Record{Numeric: map[string]float64{
		FeatCharCount: 42,
		FeatHumor:     7,
	}}

	vec := rec.Vector()
	if len(vec) != len(FeatureOrder) {
		t.Fatalf("Vector() len = %d, want %d", len(vec), len(FeatureOrder))
	}
	if vec[indexOf(t, FeatCharCount)] != 42 {
		t.Errorf("char_count slot = %v, want 42", vec[indexOf(t, FeatCharCount)])
	}
	if vec[indexOf(t, FeatHumor)] != 7 {
		t.Errorf("llm_humor slot = %v, want 7", vec[indexOf(t, FeatHumor)])
	}
	// absent features surface as their lower bound
	if vec[indexOf(t, FeatWordCount)] != 0 {
		t.Errorf("word_count slot = %v, want 0", vec[indexOf(t, FeatWordCount)])
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func indexOf(t *testing.T, name string) int {
	t.Helper()
	for i, v := range FeatureOrder {
		if v == name {
			return i
		}
	}
	t.Fatalf("feature %q not in FeatureOrder", name)
	return -1
}
