// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

// Package bundle defines the atomic model artifact produced by a
// training run and its on-disk store.
//
// A bundle holds every fitted estimator for one (platform, family)
// pair together with the preprocessing state (scaler, categorical
// encoders) and metadata. The FeatureOrder recorded here is the single
// source of truth for vector assembly: the predictor reconstructs
// vectors in exactly this order, and a bundle trained under a
// different feature schema version is rejected at load.
//
// Bundles are immutable once written; retraining replaces the whole
// artifact, never individual estimators.
package bundle

import (
	"fmt"
	"time"

	"github.com/tomtom215/postpulse/internal/features"
	"github.com/tomtom215/postpulse/internal/training/estimators"
)

// Target families.
const (
	FamilyReward     = "reward"
	FamilyPosition   = "position"
	FamilyEngagement = "engagement"
)

// Families lists every target family a platform is trained for.
var Families = []string{FamilyReward, FamilyPosition, FamilyEngagement}

// EvalMetrics holds one estimator's held-out evaluation. Regression
// families fill the error metrics; the position family fills Accuracy.
// CVMean/CVStd summarize k-fold cross-validation on the training split.
type EvalMetrics struct {
	MSE      float64 `json:"mse"`
	RMSE     float64 `json:"rmse"`
	MAE      float64 `json:"mae"`
	R2       float64 `json:"r2"`
	Accuracy float64 `json:"accuracy"`
	CVMean   float64 `json:"cv_mean"`
	CVStd    float64 `json:"cv_std"`
}

// Bundle is the atomic model artifact for one (platform, family) pair.
type Bundle struct {
	Platform      string
	Family        string
	SchemaVersion int

	// FeatureOrder is the exact column order of the trained matrix:
	// every numeric feature name followed by every categorical field
	// name (whose encoded codes occupy those columns).
	FeatureOrder []string

	Estimators map[string]estimators.Estimator
	Scaler     *StandardScaler
	// Encoders maps categorical field name to its fitted encoder.
	Encoders map[string]*LabelEncoder

	// TargetClasses, for classification families, maps the encoded
	// class index back to the original label. Empty for regression.
	TargetClasses []int

	SampleCount int
	TrainedAt   time.Time
	// Metrics holds per-estimator evaluations plus an "ensemble" entry
	// computed on the ensemble-mean predictions.
	Metrics map[string]EvalMetrics
}

// Classification reports whether this bundle predicts a discrete class.
func (b *Bundle) Classification() bool {
	return len(b.TargetClasses) > 0
}

// Validate checks structural integrity after load.
func (b *Bundle) Validate() error {
	if b.Platform == "" || b.Family == "" {
		return fmt.Errorf("bundle missing platform or family")
	}
	if len(b.Estimators) == 0 {
		return fmt.Errorf("bundle %s/%s has no estimators", b.Platform, b.Family)
	}
	if len(b.FeatureOrder) == 0 {
		return fmt.Errorf("bundle %s/%s has no feature order", b.Platform, b.Family)
	}
	if b.Scaler == nil {
		return fmt.Errorf("bundle %s/%s has no scaler", b.Platform, b.Family)
	}
	if b.SchemaVersion != features.SchemaVersion {
		return fmt.Errorf("bundle %s/%s schema version %d does not match current %d",
			b.Platform, b.Family, b.SchemaVersion, features.SchemaVersion)
	}
	return nil
}

// Assemble builds the raw (unscaled) vector for this bundle's feature
// order from a numeric vector in canonical schema order plus raw
// categorical values. Missing fields default to 0; assembly never
// fails.
func (b *Bundle) Assemble(numeric []float64, categoricals map[string]string) []float64 {
	numericIndex := make(map[string]int, len(features.FeatureOrder))
	for i, name := range features.FeatureOrder {
		numericIndex[name] = i
	}

	out := make([]float64, len(b.FeatureOrder))
	for i, name := range b.FeatureOrder {
		if idx, ok := numericIndex[name]; ok {
			if idx < len(numeric) {
				out[i] = numeric[idx]
			}
			continue
		}
		if enc, ok := b.Encoders[name]; ok {
			out[i] = enc.Transform(categoricals[name])
		}
	}
	return out
}

// DecodeClass maps an encoded class prediction back to its label,
// clipping to the valid class range.
func (b *Bundle) DecodeClass(encoded float64) int {
	if len(b.TargetClasses) == 0 {
		return 0
	}
	idx := int(encoded + 0.5)
	if encoded < 0 {
		idx = 0
	}
	if idx >= len(b.TargetClasses) {
		idx = len(b.TargetClasses) - 1
	}
	return b.TargetClasses[idx]
}
