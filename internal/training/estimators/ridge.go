// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package estimators

import (
	"fmt"
	"math"
)

// RidgeConfig contains configuration for ridge regression.
type RidgeConfig struct {
	// Lambda is the L2 regularization strength. Higher values shrink
	// the weights harder. Typical range: 0.1-10.
	Lambda float64
}

// DefaultRidgeConfig returns default ridge configuration.
func DefaultRidgeConfig() RidgeConfig {
	return RidgeConfig{Lambda: 1.0}
}

// Ridge is closed-form L2-regularized linear regression. It solves
// (X'X + λI) w = X'y via Cholesky decomposition, with a small
// diagonal boost retry if the system is near-singular.
type Ridge struct {
	Config RidgeConfig

	// Weights and Intercept are the fitted coefficients.
	Weights   []float64
	Intercept float64
	Fitted    bool
}

// NewRidge creates a ridge estimator with the given configuration.
func NewRidge(cfg RidgeConfig) *Ridge {
	if cfg.Lambda <= 0 {
		cfg.Lambda = 1.0
	}
	return &Ridge{Config: cfg}
}

// Name returns the estimator identifier.
func (r *Ridge) Name() string { return "ridge" }

// Fit solves the regularized normal equations.
func (r *Ridge) Fit(x [][]float64, y []float64) error {
	if err := validateTrainingInput(x, y); err != nil {
		return err
	}
	n := len(x)
	p := len(x[0])

	// Augment with a bias column. The intercept term is excluded from
	// regularization below.
	gram := make([][]float64, p+1)
	for i := range gram {
		gram[i] = make([]float64, p+1)
	}
	xty := make([]float64, p+1)

	for s := 0; s < n; s++ {
		row := x[s]
		for i := 0; i <= p; i++ {
			vi := 1.0
			if i < p {
				vi = row[i]
			}
			xty[i] += vi * y[s]
			for j := i; j <= p; j++ {
				vj := 1.0
				if j < p {
					vj = row[j]
				}
				gram[i][j] += vi * vj
			}
		}
	}
	for i := 0; i <= p; i++ {
		for j := 0; j < i; j++ {
			gram[i][j] = gram[j][i]
		}
	}
	for i := 0; i < p; i++ {
		gram[i][i] += r.Config.Lambda
	}

	w, err := solveCholesky(gram, xty)
	if err != nil {
		// boost the diagonal and retry once
		for i := 0; i <= p; i++ {
			gram[i][i] += 1e-6 * (gram[i][i] + 1)
		}
		w, err = solveCholesky(gram, xty)
		if err != nil {
			return fmt.Errorf("ridge: %w", err)
		}
	}

	r.Weights = w[:p]
	r.Intercept = w[p]
	r.Fitted = true
	return nil
}

// Predict returns the linear score for one vector.
func (r *Ridge) Predict(v []float64) (float64, error) {
	if !r.Fitted {
		return 0, ErrNotFitted
	}
	if err := validatePredictInput(v, len(r.Weights)); err != nil {
		return 0, err
	}
	sum := r.Intercept
	for i, w := range r.Weights {
		sum += w * v[i]
	}
	return sum, nil
}

// solveCholesky solves A x = b for symmetric positive-definite A.
func solveCholesky(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 {
					return nil, fmt.Errorf("matrix is not positive definite")
				}
				l[i][j] = math.Sqrt(sum)
			} else {
				if l[j][j] == 0 {
					return nil, fmt.Errorf("division by zero in Cholesky")
				}
				l[i][j] = sum / l[j][j]
			}
		}
	}

	// forward substitution: L z = b
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= l[i][k] * z[k]
		}
		z[i] = sum / l[i][i]
	}

	// back substitution: L' x = z
	out := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for k := i + 1; k < n; k++ {
			sum -= l[k][i] * out[k]
		}
		out[i] = sum / l[i][i]
	}
	return out, nil
}
