// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package training

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/postpulse/internal/bundle"
	"github.com/tomtom215/postpulse/internal/logging"
)

type countingReloader struct {
	mu        sync.Mutex
	platforms []string
}

func (c *countingReloader) Reload(platform string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.platforms = append(c.platforms, platform)
	return len(bundle.Families)
}

func (c *countingReloader) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.platforms)
}

func (c *countingReloader) reloaded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.platforms...)
}

func TestRunOnceTrainsAllFamilies(t *testing.T) {
	t.Parallel()
	trainer, db, store := newTestTrainer(t)
	seedTrainingRows(t, db, 40)

	reloader := &countingReloader{}
	s := NewScheduler(trainer, reloader, []string{testPlatform}, time.Hour, logging.NewTestLogger())

	trained, failed := s.RunOnce(context.Background())
	if trained != len(bundle.Families) {
		t.Errorf("trained = %d, want %d", trained, len(bundle.Families))
	}
	if failed != 0 {
		t.Errorf("failed = %d, want 0", failed)
	}
	if reloader.count() == 0 {
		t.Error("registry was never reloaded")
	}

	for _, family := range bundle.Families {
		if _, ok := store.LatestVersion(testPlatform, family); !ok {
			t.Errorf("no bundle stored for %s", family)
		}
	}
}

func TestRunOnceSkipsInsufficientData(t *testing.T) {
	t.Parallel()
	trainer, db, _ := newTestTrainer(t)
	seedTrainingRows(t, db, 5)

	reloader := &countingReloader{}
	s := NewScheduler(trainer, reloader, []string{testPlatform}, time.Hour, logging.NewTestLogger())

	trained, failed := s.RunOnce(context.Background())
	if trained != 0 {
		t.Errorf("trained = %d, want 0", trained)
	}
	if failed != 0 {
		t.Errorf("failed = %d, want 0 (insufficient data is not a failure)", failed)
	}
	if reloader.count() != 0 {
		t.Errorf("reload calls = %d, want 0", reloader.count())
	}
}

func TestRunOnceReloadsOnlyTrainedPlatforms(t *testing.T) {
	t.Parallel()
	trainer, db, _ := newTestTrainer(t)
	seedTrainingRows(t, db, 40)

	// The second platform has no data at all: every family skips, so
	// its registry slot must not be reloaded just because the first
	// platform trained.
	reloader := &countingReloader{}
	s := NewScheduler(trainer, reloader, []string{testPlatform, "pump.fun"}, time.Hour, logging.NewTestLogger())

	trained, failed := s.RunOnce(context.Background())
	if trained != len(bundle.Families) {
		t.Errorf("trained = %d, want %d", trained, len(bundle.Families))
	}
	if failed != 0 {
		t.Errorf("failed = %d, want 0", failed)
	}

	got := reloader.reloaded()
	if len(got) != 1 || got[0] != testPlatform {
		t.Errorf("reloaded platforms = %v, want [%s]", got, testPlatform)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	t.Parallel()
	trainer, db, _ := newTestTrainer(t)
	seedTrainingRows(t, db, 40)

	reloader := &countingReloader{}
	s := NewScheduler(trainer, reloader, []string{testPlatform}, time.Hour, logging.NewTestLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() succeeded, want error")
	}

	// The initial cycle runs immediately; wait for the reload.
	deadline := time.After(30 * time.Second)
	for reloader.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial training cycle never completed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() error = %v, want nil", err)
	}
}

func TestSchedulerDefaultsInterval(t *testing.T) {
	t.Parallel()
	trainer, _, _ := newTestTrainer(t)
	s := NewScheduler(trainer, &countingReloader{}, nil, 0, logging.NewTestLogger())
	if s.interval != 6*time.Hour {
		t.Errorf("interval = %v, want 6h", s.interval)
	}
}
