// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package estimators

import "sort"

// KNNConfig contains configuration for the nearest-neighbor estimator.
type KNNConfig struct {
	// K is the neighborhood size. Clipped to the sample count at fit.
	K int
}

// DefaultKNNConfig returns default kNN configuration.
func DefaultKNNConfig() KNNConfig {
	return KNNConfig{K: 7}
}

// KNN predicts the mean target of the K nearest training samples under
// Euclidean distance. Fit just retains the (already scaled) matrix, so
// it is the cheapest member to train and the most expensive to query.
type KNN struct {
	Config KNNConfig
	X      [][]float64
	Y      []float64
}

// NewKNN creates a kNN estimator with the given configuration.
func NewKNN(cfg KNNConfig) *KNN {
	if cfg.K <= 0 {
		cfg.K = 7
	}
	return &KNN{Config: cfg}
}

// Name returns the estimator identifier.
func (k *KNN) Name() string { return "knn" }

// Fit retains copies of the training data.
func (k *KNN) Fit(x [][]float64, y []float64) error {
	if err := validateTrainingInput(x, y); err != nil {
		return err
	}
	k.X = make([][]float64, len(x))
	for i, row := range x {
		k.X[i] = append([]float64(nil), row...)
	}
	k.Y = append([]float64(nil), y...)
	return nil
}

// Predict averages the targets of the nearest neighbors.
func (k *KNN) Predict(v []float64) (float64, error) {
	if len(k.X) == 0 {
		return 0, ErrNotFitted
	}
	if err := validatePredictInput(v, len(k.X[0])); err != nil {
		return 0, err
	}

	type neighbor struct {
		dist   float64
		target float64
	}
	neighbors := make([]neighbor, len(k.X))
	for i, row := range k.X {
		neighbors[i] = neighbor{dist: euclideanDistance(v, row), target: k.Y[i]}
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })

	kk := k.Config.K
	if kk > len(neighbors) {
		kk = len(neighbors)
	}
	var sum float64
	for i := 0; i < kk; i++ {
		sum += neighbors[i].target
	}
	return sum / float64(kk), nil
}
