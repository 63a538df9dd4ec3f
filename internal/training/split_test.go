// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package training

import (
	"testing"
)

func TestTrainTestSplitIsDeterministic(t *testing.T) {
	t.Parallel()

	train1, test1 := trainTestSplit(50, 0.2, 42)
	train2, test2 := trainTestSplit(50, 0.2, 42)

	if len(train1) != len(train2) || len(test1) != len(test2) {
		t.Fatalf("split sizes differ across identical calls: (%d,%d) vs (%d,%d)",
			len(train1), len(test1), len(train2), len(test2))
	}
	for i := range train1 {
		if train1[i] != train2[i] {
			t.Fatalf("train index %d differs: %d vs %d", i, train1[i], train2[i])
		}
	}
	for i := range test1 {
		if test1[i] != test2[i] {
			t.Fatalf("test index %d differs: %d vs %d", i, test1[i], test2[i])
		}
	}
}

func TestTrainTestSplitCoversAllIndices(t *testing.T) {
	t.Parallel()

	const n = 30
	train, test := trainTestSplit(n, 0.2, 7)

	if len(test) != 6 {
		t.Errorf("test size = %d, want 6", len(test))
	}
	seen := make(map[int]int, n)
	for _, idx := range train {
		seen[idx]++
	}
	for _, idx := range test {
		seen[idx]++
	}
	if len(seen) != n {
		t.Fatalf("split covers %d distinct indices, want %d", len(seen), n)
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("index %d appears %d times, want 1", idx, count)
		}
	}
}

func TestTrainTestSplitNeverEmptyTestSet(t *testing.T) {
	t.Parallel()

	train, test := trainTestSplit(3, 0.1, 1)
	if len(test) != 1 {
		t.Errorf("test size = %d, want 1", len(test))
	}
	if len(train) != 2 {
		t.Errorf("train size = %d, want 2", len(train))
	}
}

func TestKFoldsPartition(t *testing.T) {
	t.Parallel()

	indices := make([]int, 23)
	for i := range indices {
		indices[i] = i
	}
	folds := kFolds(indices, 5, 42)

	if len(folds) != 5 {
		t.Fatalf("fold count = %d, want 5", len(folds))
	}
	seen := make(map[int]int, len(indices))
	minSize, maxSize := len(indices), 0
	for _, fold := range folds {
		if len(fold) < minSize {
			minSize = len(fold)
		}
		if len(fold) > maxSize {
			maxSize = len(fold)
		}
		for _, idx := range fold {
			seen[idx]++
		}
	}
	if len(seen) != len(indices) {
		t.Errorf("folds cover %d distinct indices, want %d", len(seen), len(indices))
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("index %d appears in %d folds, want 1", idx, count)
		}
	}
	if maxSize-minSize > 1 {
		t.Errorf("fold sizes range from %d to %d, want spread <= 1", minSize, maxSize)
	}
}

func TestKFoldsClampsToSampleCount(t *testing.T) {
	t.Parallel()

	folds := kFolds([]int{0, 1, 2}, 10, 42)
	if len(folds) != 3 {
		t.Fatalf("fold count = %d, want 3", len(folds))
	}
	for i, fold := range folds {
		if len(fold) != 1 {
			t.Errorf("fold %d has %d indices, want 1", i, len(fold))
		}
	}
}
