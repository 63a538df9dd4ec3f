// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package training

import "math/rand"

// trainTestSplit shuffles sample indices with a fixed seed and carves
// off the trailing fraction as the held-out test set. Identical inputs
// always produce identical splits.
func trainTestSplit(n int, testFraction float64, seed int64) (train, test []int) {
	if testFraction <= 0 || testFraction >= 1 {
		testFraction = 0.2
	}
	indices := rand.New(rand.NewSource(seed)).Perm(n)

	testSize := int(float64(n) * testFraction)
	if testSize < 1 {
		testSize = 1
	}
	cut := n - testSize
	return indices[:cut], indices[cut:]
}

// kFolds partitions the given indices into k contiguous folds after a
// seeded shuffle. Folds differ in size by at most one element.
func kFolds(indices []int, k int, seed int64) [][]int {
	if k < 2 {
		k = 2
	}
	if k > len(indices) {
		k = len(indices)
	}

	shuffled := append([]int(nil), indices...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	folds := make([][]int, k)
	for i, idx := range shuffled {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds
}
