// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package estimators

import "sort"

// TreeConfig contains configuration for the regression tree.
type TreeConfig struct {
	// MaxDepth limits tree depth. Zero means use the default.
	MaxDepth int
	// MinSamplesLeaf is the smallest leaf size a split may produce.
	MinSamplesLeaf int
	// featureSubset, when non-nil, restricts candidate split features.
	// Set by the random forest for per-tree feature bagging.
	featureSubset []int
}

// DefaultTreeConfig returns default tree configuration.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		MaxDepth:       8,
		MinSamplesLeaf: 3,
	}
}

// TreeNode is one node of a fitted regression tree. Leaves carry the
// mean target value; internal nodes carry the split.
type TreeNode struct {
	Feature   int
	Threshold float64
	Value     float64
	Left      *TreeNode
	Right     *TreeNode
	Leaf      bool
}

// DecisionTree is a CART regression tree splitting on variance
// reduction. It serves both as a standalone ensemble member and as the
// base learner for the forest and gradient boosting.
type DecisionTree struct {
	Config TreeConfig
	Root   *TreeNode
	Width  int
}

// NewDecisionTree creates a tree estimator with the given configuration.
func NewDecisionTree(cfg TreeConfig) *DecisionTree {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 8
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 3
	}
	return &DecisionTree{Config: cfg}
}

// Name returns the estimator identifier.
func (t *DecisionTree) Name() string { return "decision_tree" }

// Fit grows the tree greedily on variance reduction.
func (t *DecisionTree) Fit(x [][]float64, y []float64) error {
	if err := validateTrainingInput(x, y); err != nil {
		return err
	}
	t.Width = len(x[0])

	indices := make([]int, len(x))
	for i := range indices {
		indices[i] = i
	}
	t.Root = t.grow(x, y, indices, 0)
	return nil
}

// Predict walks the tree for one vector.
func (t *DecisionTree) Predict(v []float64) (float64, error) {
	if t.Root == nil {
		return 0, ErrNotFitted
	}
	if err := validatePredictInput(v, t.Width); err != nil {
		return 0, err
	}
	node := t.Root
	for !node.Leaf {
		if v[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value, nil
}

func (t *DecisionTree) grow(x [][]float64, y []float64, indices []int, depth int) *TreeNode {
	subset := make([]float64, len(indices))
	for i, idx := range indices {
		subset[i] = y[idx]
	}
	node := &TreeNode{Value: mean(subset), Leaf: true}

	if depth >= t.Config.MaxDepth || len(indices) < 2*t.Config.MinSamplesLeaf {
		return node
	}
	if variance(subset) == 0 {
		return node
	}

	feature, threshold, ok := t.bestSplit(x, y, indices)
	if !ok {
		return node
	}

	var left, right []int
	for _, idx := range indices {
		if x[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) < t.Config.MinSamplesLeaf || len(right) < t.Config.MinSamplesLeaf {
		return node
	}

	node.Leaf = false
	node.Feature = feature
	node.Threshold = threshold
	node.Left = t.grow(x, y, left, depth+1)
	node.Right = t.grow(x, y, right, depth+1)
	return node
}

// bestSplit scans candidate features for the variance-minimizing
// threshold. Candidate thresholds are midpoints between consecutive
// distinct sorted values.
func (t *DecisionTree) bestSplit(x [][]float64, y []float64, indices []int) (int, float64, bool) {
	candidates := t.Config.featureSubset
	if candidates == nil {
		candidates = make([]int, t.Width)
		for i := range candidates {
			candidates[i] = i
		}
	}

	bestScore := variance(targetsAt(y, indices)) * float64(len(indices))
	bestFeature, bestThreshold := -1, 0.0
	improved := false

	vals := make([]float64, 0, len(indices))
	for _, feature := range candidates {
		vals = vals[:0]
		for _, idx := range indices {
			vals = append(vals, x[idx][feature])
		}
		sort.Float64s(vals)

		for i := 1; i < len(vals); i++ {
			if vals[i] == vals[i-1] {
				continue
			}
			threshold := (vals[i] + vals[i-1]) / 2

			var leftY, rightY []float64
			for _, idx := range indices {
				if x[idx][feature] <= threshold {
					leftY = append(leftY, y[idx])
				} else {
					rightY = append(rightY, y[idx])
				}
			}
			if len(leftY) < t.Config.MinSamplesLeaf || len(rightY) < t.Config.MinSamplesLeaf {
				continue
			}

			score := variance(leftY)*float64(len(leftY)) + variance(rightY)*float64(len(rightY))
			if score < bestScore {
				bestScore = score
				bestFeature = feature
				bestThreshold = threshold
				improved = true
			}
		}
	}

	return bestFeature, bestThreshold, improved
}

func targetsAt(y []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = y[idx]
	}
	return out
}
