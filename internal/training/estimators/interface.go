// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

// Package estimators implements the ensemble member models for the
// trainer.
//
// Each estimator implements the closed Estimator interface; the
// ensemble is a fixed set of heterogeneous members selected by
// configuration, not an open-ended plugin surface.
//
// # Determinism
//
// Every estimator that uses randomness takes an explicit seed, so
// training runs on identical data produce identical models.
//
// # Serialization
//
// Fitted state lives in exported fields only, so estimators round-trip
// through gob inside a model bundle. Derived caches are rebuilt lazily
// after decode.
package estimators

import (
	"errors"
	"fmt"
	"math"
)

// Estimator is the closed fit/predict contract consumed by the trainer
// and the predictor. Fit is called once per training run; Predict must
// be safe for concurrent use after Fit returns.
type Estimator interface {
	// Name returns the estimator identifier used in bundle metadata.
	Name() string
	// Fit trains on the scaled feature matrix X and target vector y.
	Fit(x [][]float64, y []float64) error
	// Predict scores one scaled feature vector.
	Predict(v []float64) (float64, error)
}

// ErrNotFitted is returned by Predict before a successful Fit.
var ErrNotFitted = errors.New("estimators: model not fitted")

// validateTrainingInput checks matrix/target shape agreement.
func validateTrainingInput(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("estimators: empty feature matrix")
	}
	if len(x) != len(y) {
		return fmt.Errorf("estimators: %d samples but %d targets", len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return fmt.Errorf("estimators: zero-width feature matrix")
	}
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("estimators: row %d has width %d, want %d", i, len(row), width)
		}
	}
	return nil
}

// validatePredictInput checks the vector width against the fitted width.
func validatePredictInput(v []float64, width int) error {
	if width == 0 {
		return ErrNotFitted
	}
	if len(v) != width {
		return fmt.Errorf("estimators: vector width %d, model expects %d", len(v), width)
	}
	return nil
}

// euclideanDistance computes straight-line distance between vectors of
// equal length.
func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// mean of a float slice; zero for empty input.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// variance around the mean; zero for fewer than two values.
func variance(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vals))
}

// Ensure all estimators implement the interface.
var (
	_ Estimator = (*Ridge)(nil)
	_ Estimator = (*DecisionTree)(nil)
	_ Estimator = (*RandomForest)(nil)
	_ Estimator = (*GradientBoosting)(nil)
	_ Estimator = (*KNN)(nil)
)
