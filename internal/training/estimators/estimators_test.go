// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package estimators

import (
	"errors"
	"math"
	"testing"
)

// linearData generates y = 2*x0 - 3*x1 + 5 with no noise.
func linearData(n int) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a := float64(i%10) / 2
		b := float64((i*7)%13) / 3
		x[i] = []float64{a, b}
		y[i] = 2*a - 3*b + 5
	}
	return x, y
}

// stepData generates a piecewise-constant target split at x0 = 5.
func stepData(n int) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := float64(i % 10)
		x[i] = []float64{v, float64(i % 3)}
		if v < 5 {
			y[i] = 10
		} else {
			y[i] = 20
		}
	}
	return x, y
}

func fitOrFatal(t *testing.T, e Estimator, x [][]float64, y []float64) {
	t.Helper()
	if err := e.Fit(x, y); err != nil {
		t.Fatalf("%s.Fit() error = %v", e.Name(), err)
	}
}

func predictOrFatal(t *testing.T, e Estimator, v []float64) float64 {
	t.Helper()
	p, err := e.Predict(v)
	if err != nil {
		t.Fatalf("%s.Predict() error = %v", e.Name(), err)
	}
	return p
}

func TestRidgeRecoversLinearRelation(t *testing.T) {
	t.Parallel()

	x, y := linearData(60)
	r := NewRidge(RidgeConfig{Lambda: 0.001})
	fitOrFatal(t, r, x, y)

	got := predictOrFatal(t, r, []float64{2, 1})
	want := 2*2.0 - 3*1.0 + 5
	if math.Abs(got-want) > 0.1 {
		t.Errorf("Predict([2,1]) = %v, want ~%v", got, want)
	}
}

func TestDecisionTreeLearnsStepFunction(t *testing.T) {
	t.Parallel()

	x, y := stepData(100)
	tree := NewDecisionTree(DefaultTreeConfig())
	fitOrFatal(t, tree, x, y)

	if got := predictOrFatal(t, tree, []float64{2, 0}); math.Abs(got-10) > 0.5 {
		t.Errorf("Predict(low) = %v, want ~10", got)
	}
	if got := predictOrFatal(t, tree, []float64{8, 0}); math.Abs(got-20) > 0.5 {
		t.Errorf("Predict(high) = %v, want ~20", got)
	}
}

func TestRandomForestIsDeterministicForSeed(t *testing.T) {
	t.Parallel()

	x, y := stepData(80)
	a := NewRandomForest(ForestConfig{NumTrees: 10, Seed: 7})
	b := NewRandomForest(ForestConfig{NumTrees: 10, Seed: 7})
	fitOrFatal(t, a, x, y)
	fitOrFatal(t, b, x, y)

	probe := []float64{3, 1}
	if pa, pb := predictOrFatal(t, a, probe), predictOrFatal(t, b, probe); pa != pb {
		t.Errorf("same-seed forests disagree: %v vs %v", pa, pb)
	}
}

func TestGradientBoostingImprovesOnBase(t *testing.T) {
	t.Parallel()

	x, y := stepData(100)
	g := NewGradientBoosting(DefaultGBMConfig())
	fitOrFatal(t, g, x, y)

	// the base alone would predict the global mean (15) everywhere
	var sumErr, baseErr float64
	for i := range x {
		p := predictOrFatal(t, g, x[i])
		sumErr += math.Abs(p - y[i])
		baseErr += math.Abs(15 - y[i])
	}
	if sumErr >= baseErr {
		t.Errorf("boosting error %v not better than base error %v", sumErr, baseErr)
	}
}

func TestKNNNearestNeighborDominates(t *testing.T) {
	t.Parallel()

	x := [][]float64{{0, 0}, {10, 10}, {20, 20}}
	y := []float64{1, 2, 3}
	k := NewKNN(KNNConfig{K: 1})
	fitOrFatal(t, k, x, y)

	if got := predictOrFatal(t, k, []float64{0.1, 0.1}); got != 1 {
		t.Errorf("Predict(near first) = %v, want 1", got)
	}
	if got := predictOrFatal(t, k, []float64{19, 21}); got != 3 {
		t.Errorf("Predict(near last) = %v, want 3", got)
	}
}

func TestPredictBeforeFit(t *testing.T) {
	t.Parallel()

	all := []Estimator{
		NewRidge(DefaultRidgeConfig()),
		NewDecisionTree(DefaultTreeConfig()),
		NewRandomForest(DefaultForestConfig()),
		NewGradientBoosting(DefaultGBMConfig()),
		NewKNN(DefaultKNNConfig()),
	}
	for _, e := range all {
		if _, err := e.Predict([]float64{1}); !errors.Is(err, ErrNotFitted) {
			t.Errorf("%s.Predict() before fit error = %v, want ErrNotFitted", e.Name(), err)
		}
	}
}

func TestFitRejectsShapeMismatch(t *testing.T) {
	t.Parallel()

	r := NewRidge(DefaultRidgeConfig())
	if err := r.Fit([][]float64{{1, 2}}, []float64{1, 2}); err == nil {
		t.Error("Fit() with mismatched shapes expected error")
	}
	if err := r.Fit(nil, nil); err == nil {
		t.Error("Fit() with empty input expected error")
	}
}

func TestPredictRejectsWidthMismatch(t *testing.T) {
	t.Parallel()

	x, y := linearData(30)
	r := NewRidge(DefaultRidgeConfig())
	fitOrFatal(t, r, x, y)

	if _, err := r.Predict([]float64{1, 2, 3}); err == nil {
		t.Error("Predict() with wrong width expected error")
	}
}
