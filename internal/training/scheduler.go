// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package training

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postpulse/internal/bundle"
)

// Reloader refreshes served models after a training run. Implemented
// by the model registry.
type Reloader interface {
	Reload(platform string) int
}

// Scheduler retrains every (platform, family) pair on a fixed
// interval and reloads the registry so fresh bundles serve without a
// restart. It follows a Start/Stop lifecycle: Start spawns the loop
// and returns, Stop blocks until the loop exits.
type Scheduler struct {
	trainer   *Trainer
	reloader  Reloader
	platforms []string
	interval  time.Duration
	logger    zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a training scheduler. A non-positive interval
// falls back to six hours.
func NewScheduler(trainer *Trainer, reloader Reloader, platforms []string, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Scheduler{
		trainer:   trainer,
		reloader:  reloader,
		platforms: platforms,
		interval:  interval,
		logger:    logger.With().Str("component", "training_scheduler").Logger(),
	}
}

// Start begins the periodic training loop. The first cycle runs
// immediately so a fresh deployment trains as soon as data exists.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("training scheduler already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop(loopCtx)

	s.logger.Info().
		Dur("interval", s.interval).
		Strs("platforms", s.platforms).
		Msg("Training scheduler started")
	return nil
}

// Stop terminates the loop and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info().Msg("Training scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce trains every configured (platform, family) pair and reloads
// the registry per platform. Insufficient data is expected on young
// platforms and logged at debug level; other failures are logged and
// counted but never abort the remaining pairs.
func (s *Scheduler) RunOnce(ctx context.Context) (trained int, failed int) {
	start := time.Now()

	for _, platform := range s.platforms {
		platformTrained := 0
		for _, family := range bundle.Families {
			if ctx.Err() != nil {
				return trained, failed
			}
			_, err := s.trainer.Train(ctx, platform, family)
			switch {
			case err == nil:
				trained++
				platformTrained++
			case errors.Is(err, ErrInsufficientData):
				s.logger.Debug().
					Str("platform", platform).
					Str("family", family).
					Msg("Skipping training, not enough samples")
			default:
				failed++
				s.logger.Error().Err(err).
					Str("platform", platform).
					Str("family", family).
					Msg("Scheduled training run failed")
			}
		}
		if platformTrained > 0 {
			loaded := s.reloader.Reload(platform)
			s.logger.Info().
				Str("platform", platform).
				Int("models_loaded", loaded).
				Msg("Registry reloaded after training cycle")
		}
	}

	s.logger.Info().
		Int("trained", trained).
		Int("failed", failed).
		Str("duration", fmt.Sprintf("%.1fs", time.Since(start).Seconds())).
		Msg("Training cycle complete")
	return trained, failed
}
