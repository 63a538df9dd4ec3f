// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package bundle

import "math"

// StandardScaler centers and scales features to zero mean and unit
// variance. It is fit on the training split only and persisted in the
// bundle so inference applies the exact training-time transform.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes per-column mean and standard deviation.
func FitScaler(x [][]float64) *StandardScaler {
	if len(x) == 0 {
		return &StandardScaler{}
	}
	width := len(x[0])
	s := &StandardScaler{
		Mean: make([]float64, width),
		Std:  make([]float64, width),
	}

	for _, row := range x {
		for i, v := range row {
			s.Mean[i] += v
		}
	}
	n := float64(len(x))
	for i := range s.Mean {
		s.Mean[i] /= n
	}

	for _, row := range x {
		for i, v := range row {
			d := v - s.Mean[i]
			s.Std[i] += d * d
		}
	}
	for i := range s.Std {
		s.Std[i] = math.Sqrt(s.Std[i] / n)
		// constant columns pass through unscaled
		if s.Std[i] == 0 {
			s.Std[i] = 1
		}
	}
	return s
}

// Transform scales one vector. Width mismatches return the input
// unchanged; the caller validates widths upstream.
func (s *StandardScaler) Transform(v []float64) []float64 {
	if len(v) != len(s.Mean) {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = (x - s.Mean[i]) / s.Std[i]
	}
	return out
}

// TransformMatrix scales every row.
func (s *StandardScaler) TransformMatrix(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.Transform(row)
	}
	return out
}
