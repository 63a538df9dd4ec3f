// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package estimators

import "fmt"

// GBMConfig contains configuration for gradient boosting.
type GBMConfig struct {
	// NumRounds is the number of boosting stages.
	NumRounds int
	// LearningRate shrinks each stage's contribution.
	LearningRate float64
	// MaxDepth limits the per-stage tree depth; shallow trees boost best.
	MaxDepth int
	// MinSamplesLeaf is the smallest leaf size per stage tree.
	MinSamplesLeaf int
}

// DefaultGBMConfig returns default boosting configuration.
func DefaultGBMConfig() GBMConfig {
	return GBMConfig{
		NumRounds:      60,
		LearningRate:   0.1,
		MaxDepth:       3,
		MinSamplesLeaf: 3,
	}
}

// GradientBoosting fits shallow regression trees sequentially on the
// residuals of the running prediction, with squared-error loss.
type GradientBoosting struct {
	Config GBMConfig

	// Base is the initial constant prediction (the target mean).
	Base   float64
	Stages []*DecisionTree
	Width  int
}

// NewGradientBoosting creates a boosting estimator with the given
// configuration.
func NewGradientBoosting(cfg GBMConfig) *GradientBoosting {
	if cfg.NumRounds <= 0 {
		cfg.NumRounds = 60
	}
	if cfg.LearningRate <= 0 || cfg.LearningRate > 1 {
		cfg.LearningRate = 0.1
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 3
	}
	return &GradientBoosting{Config: cfg}
}

// Name returns the estimator identifier.
func (g *GradientBoosting) Name() string { return "gradient_boosting" }

// Fit runs the boosting stages.
func (g *GradientBoosting) Fit(x [][]float64, y []float64) error {
	if err := validateTrainingInput(x, y); err != nil {
		return err
	}
	g.Width = len(x[0])
	g.Base = mean(y)

	current := make([]float64, len(y))
	for i := range current {
		current[i] = g.Base
	}
	residuals := make([]float64, len(y))

	g.Stages = make([]*DecisionTree, 0, g.Config.NumRounds)
	for round := 0; round < g.Config.NumRounds; round++ {
		allZero := true
		for i := range y {
			residuals[i] = y[i] - current[i]
			if residuals[i] != 0 {
				allZero = false
			}
		}
		if allZero {
			break
		}

		tree := NewDecisionTree(TreeConfig{
			MaxDepth:       g.Config.MaxDepth,
			MinSamplesLeaf: g.Config.MinSamplesLeaf,
		})
		if err := tree.Fit(x, residuals); err != nil {
			return fmt.Errorf("gradient boosting round %d: %w", round, err)
		}
		g.Stages = append(g.Stages, tree)

		for i := range current {
			p, err := tree.Predict(x[i])
			if err != nil {
				return fmt.Errorf("gradient boosting round %d predict: %w", round, err)
			}
			current[i] += g.Config.LearningRate * p
		}
	}
	return nil
}

// Predict sums the base value and the shrunken stage outputs.
func (g *GradientBoosting) Predict(v []float64) (float64, error) {
	if len(g.Stages) == 0 && g.Base == 0 && g.Width == 0 {
		return 0, ErrNotFitted
	}
	if err := validatePredictInput(v, g.Width); err != nil {
		return 0, err
	}
	sum := g.Base
	for _, tree := range g.Stages {
		p, err := tree.Predict(v)
		if err != nil {
			return 0, err
		}
		sum += g.Config.LearningRate * p
	}
	return sum, nil
}
