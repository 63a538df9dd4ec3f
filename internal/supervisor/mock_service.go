// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

var errSimulatedCrash = errors.New("simulated crash")

// MockService is a controllable suture.Service for supervision tests.
// It counts starts and stops, and can be told to crash its first N
// Serve calls so restart behavior is observable.
type MockService struct {
	name      string
	starts    atomic.Int32
	stops     atomic.Int32
	failsLeft atomic.Int32
}

// NewMockService creates a mock service that runs until canceled.
func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

// SetFailCount makes the next n Serve calls return an error, forcing
// the supervisor to restart the service. Call before the tree starts.
func (m *MockService) SetFailCount(n int) {
	m.failsLeft.Store(int32(n))
}

// Serve crashes while failures remain, then blocks until the context
// is canceled.
func (m *MockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	defer m.stops.Add(1)

	if m.failsLeft.Add(-1) >= 0 {
		return errSimulatedCrash
	}

	<-ctx.Done()
	return ctx.Err()
}

// StartCount reports how many times Serve was entered.
func (m *MockService) StartCount() int32 {
	return m.starts.Load()
}

// StopCount reports how many times Serve returned.
func (m *MockService) StopCount() int32 {
	return m.stops.Load()
}

func (m *MockService) String() string {
	return m.name
}
