// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package services

import (
	"context"
	"fmt"
)

// Runner abstracts components with a blocking Run loop and an explicit
// Close, such as the ingest pipeline's message router. Run is expected
// to return shortly after the context is canceled.
type Runner interface {
	Run(ctx context.Context) error
	Close() error
}

// RunnerService adapts a Run/Close component to suture's Serve pattern.
type RunnerService struct {
	runner Runner
	name   string
}

// NewRunnerService creates a supervised wrapper around a Run/Close
// component. The name identifies the service in logs.
func NewRunnerService(name string, runner Runner) *RunnerService {
	return &RunnerService{
		runner: runner,
		name:   name,
	}
}

// Serve implements suture.Service. Run blocks for the lifetime of the
// service; Close releases resources once the loop has exited.
func (s *RunnerService) Serve(ctx context.Context) error {
	runErr := s.runner.Run(ctx)

	if err := s.runner.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("%s close failed: %w", s.name, err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr != nil {
		return fmt.Errorf("%s run failed: %w", s.name, runErr)
	}
	return nil
}

// String implements fmt.Stringer for supervisor log messages.
func (s *RunnerService) String() string {
	return s.name
}
