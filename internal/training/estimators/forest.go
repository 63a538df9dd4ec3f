// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package estimators

import (
	"fmt"
	"math"
	"math/rand"
)

// ForestConfig contains configuration for the random forest.
type ForestConfig struct {
	// NumTrees is the ensemble size. Typical range: 20-100.
	NumTrees int
	// MaxDepth limits each tree's depth.
	MaxDepth int
	// MinSamplesLeaf is the smallest leaf size per tree.
	MinSamplesLeaf int
	// Seed drives bootstrap sampling and feature bagging.
	Seed int64
}

// DefaultForestConfig returns default forest configuration.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NumTrees:       40,
		MaxDepth:       10,
		MinSamplesLeaf: 2,
		Seed:           42,
	}
}

// RandomForest is bootstrap-aggregated regression trees with per-tree
// feature bagging (sqrt of the feature count per tree).
type RandomForest struct {
	Config ForestConfig
	Trees  []*DecisionTree
	Width  int
}

// NewRandomForest creates a forest estimator with the given configuration.
func NewRandomForest(cfg ForestConfig) *RandomForest {
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = 40
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 2
	}
	return &RandomForest{Config: cfg}
}

// Name returns the estimator identifier.
func (f *RandomForest) Name() string { return "random_forest" }

// Fit grows NumTrees trees on bootstrap samples.
func (f *RandomForest) Fit(x [][]float64, y []float64) error {
	if err := validateTrainingInput(x, y); err != nil {
		return err
	}
	n := len(x)
	f.Width = len(x[0])
	rng := rand.New(rand.NewSource(f.Config.Seed))

	featuresPerTree := int(math.Ceil(math.Sqrt(float64(f.Width))))
	if featuresPerTree < 1 {
		featuresPerTree = 1
	}

	f.Trees = make([]*DecisionTree, 0, f.Config.NumTrees)
	for t := 0; t < f.Config.NumTrees; t++ {
		bootX := make([][]float64, n)
		bootY := make([]float64, n)
		for i := 0; i < n; i++ {
			pick := rng.Intn(n)
			bootX[i] = x[pick]
			bootY[i] = y[pick]
		}

		subset := rng.Perm(f.Width)[:featuresPerTree]

		tree := NewDecisionTree(TreeConfig{
			MaxDepth:       f.Config.MaxDepth,
			MinSamplesLeaf: f.Config.MinSamplesLeaf,
			featureSubset:  subset,
		})
		if err := tree.Fit(bootX, bootY); err != nil {
			return fmt.Errorf("random forest tree %d: %w", t, err)
		}
		f.Trees = append(f.Trees, tree)
	}
	return nil
}

// Predict averages the member trees' predictions.
func (f *RandomForest) Predict(v []float64) (float64, error) {
	if len(f.Trees) == 0 {
		return 0, ErrNotFitted
	}
	if err := validatePredictInput(v, f.Width); err != nil {
		return 0, err
	}
	var sum float64
	for _, tree := range f.Trees {
		p, err := tree.Predict(v)
		if err != nil {
			return 0, err
		}
		sum += p
	}
	return sum / float64(len(f.Trees)), nil
}
