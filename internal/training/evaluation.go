// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package training

import "math"

// meanSquaredError over paired predictions and targets.
func meanSquaredError(preds, y []float64) float64 {
	if len(preds) == 0 {
		return 0
	}
	var sum float64
	for i := range preds {
		d := preds[i] - y[i]
		sum += d * d
	}
	return sum / float64(len(preds))
}

// meanAbsoluteError over paired predictions and targets.
func meanAbsoluteError(preds, y []float64) float64 {
	if len(preds) == 0 {
		return 0
	}
	var sum float64
	for i := range preds {
		sum += math.Abs(preds[i] - y[i])
	}
	return sum / float64(len(preds))
}

// rSquared is the coefficient of determination. A constant target
// yields 0 rather than a division by zero.
func rSquared(preds, y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	for i := range y {
		d := y[i] - preds[i]
		ssRes += d * d
		t := y[i] - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// accuracy compares predictions rounded to the nearest class code
// against integer-coded targets.
func accuracy(preds, y []float64) float64 {
	if len(preds) == 0 {
		return 0
	}
	correct := 0
	for i := range preds {
		if math.Round(preds[i]) == math.Round(y[i]) {
			correct++
		}
	}
	return float64(correct) / float64(len(preds))
}

// meanStd returns the mean and standard deviation of a sample.
func meanStd(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var m float64
	for _, v := range vals {
		m += v
	}
	m /= float64(len(vals))

	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return m, math.Sqrt(ss / float64(len(vals)))
}
