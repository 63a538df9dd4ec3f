// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package services

import (
	"context"
	"fmt"
)

// StartStopManager abstracts components with a Start/Stop lifecycle,
// such as the training scheduler. Start spawns internal goroutines and
// returns; Stop blocks until they complete.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// StartStopService adapts a Start/Stop component to suture's Serve
// pattern:
//  1. Calls Start(ctx) to begin the component
//  2. Waits for context cancellation
//  3. Calls Stop() for graceful shutdown
type StartStopService struct {
	manager StartStopManager
	name    string
}

// NewStartStopService creates a supervised wrapper around a
// Start/Stop component. The name identifies the service in logs.
func NewStartStopService(name string, manager StartStopManager) *StartStopService {
	return &StartStopService{
		manager: manager,
		name:    name,
	}
}

// Serve implements suture.Service. If Start fails the error is
// returned immediately, causing suture to restart the service
// according to its backoff policy.
func (s *StartStopService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", s.name, err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer for supervisor log messages.
func (s *StartStopService) String() string {
	return s.name
}
