// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package training

import (
	"math"
	"testing"
)

func TestMeanSquaredError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		preds []float64
		y     []float64
		want  float64
	}{
		{"perfect", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"constant offset", []float64{2, 3, 4}, []float64{1, 2, 3}, 1},
		{"mixed errors", []float64{0, 4}, []float64{2, 2}, 4},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := meanSquaredError(tt.preds, tt.y); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("meanSquaredError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeanAbsoluteError(t *testing.T) {
	t.Parallel()

	got := meanAbsoluteError([]float64{1, -1, 5}, []float64{2, 1, 2})
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("meanAbsoluteError() = %v, want 2", got)
	}
}

func TestRSquared(t *testing.T) {
	t.Parallel()

	perfect := rSquared([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	if math.Abs(perfect-1) > 1e-9 {
		t.Errorf("rSquared(perfect) = %v, want 1", perfect)
	}

	// Predicting the target mean everywhere scores exactly zero.
	meanOnly := rSquared([]float64{2.5, 2.5, 2.5, 2.5}, []float64{1, 2, 3, 4})
	if math.Abs(meanOnly) > 1e-9 {
		t.Errorf("rSquared(mean prediction) = %v, want 0", meanOnly)
	}

	constant := rSquared([]float64{9, 9, 9}, []float64{5, 5, 5})
	if constant != 0 {
		t.Errorf("rSquared(constant target) = %v, want 0", constant)
	}
}

func TestAccuracyRoundsPredictions(t *testing.T) {
	t.Parallel()

	preds := []float64{0.1, 0.9, 2.4, 2.6}
	y := []float64{0, 1, 2, 2}
	got := accuracy(preds, y)
	if math.Abs(got-0.75) > 1e-9 {
		t.Errorf("accuracy() = %v, want 0.75", got)
	}
}

func TestMeanStd(t *testing.T) {
	t.Parallel()

	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(mean-5) > 1e-9 {
		t.Errorf("mean = %v, want 5", mean)
	}
	if math.Abs(std-2) > 1e-9 {
		t.Errorf("std = %v, want 2", std)
	}

	mean, std = meanStd(nil)
	if mean != 0 || std != 0 {
		t.Errorf("meanStd(nil) = (%v, %v), want (0, 0)", mean, std)
	}
}
