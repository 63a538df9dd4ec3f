// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package supervisor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testSlogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", cfg.FailureThreshold)
	}
	if cfg.FailureBackoff != 15*time.Second {
		t.Errorf("FailureBackoff = %v, want 15s", cfg.FailureBackoff)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestNewSupervisorTreeAppliesDefaults(t *testing.T) {
	tree, err := NewSupervisorTree(testSlogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", tree.config.FailureThreshold)
	}
	if tree.Root() == nil {
		t.Fatal("Root() = nil")
	}
}

func TestTreeRunsAndStopsServices(t *testing.T) {
	tree, err := NewSupervisorTree(testSlogger(), DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	pipelineSvc := NewMockService("pipeline-svc")
	apiSvc := NewMockService("api-svc")
	tree.AddPipelineService(pipelineSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for pipelineSvc.StartCount() == 0 || apiSvc.StartCount() == 0 {
		select {
		case <-deadline:
			t.Fatalf("services did not start: pipeline=%d api=%d",
				pipelineSvc.StartCount(), apiSvc.StartCount())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after context cancellation")
	}

	if pipelineSvc.StopCount() == 0 || apiSvc.StopCount() == 0 {
		t.Errorf("services did not stop: pipeline=%d api=%d",
			pipelineSvc.StopCount(), apiSvc.StopCount())
	}
}

func TestTreeRestartsFailedService(t *testing.T) {
	cfg := DefaultTreeConfig()
	cfg.FailureBackoff = 10 * time.Millisecond
	tree, err := NewSupervisorTree(testSlogger(), cfg)
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	svc := NewMockService("flaky-svc")
	svc.SetFailCount(2)
	tree.AddPipelineService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(3 * time.Second)
	for svc.StartCount() < 3 {
		select {
		case <-deadline:
			t.Fatalf("service restarted %d times, want at least 3 starts", svc.StartCount())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-errCh
}

func TestUnstoppedServiceReportEmptyAfterCleanShutdown(t *testing.T) {
	tree, err := NewSupervisorTree(testSlogger(), DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	tree.AddAPIService(NewMockService("api-svc"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-errCh

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services = %d, want 0", len(report))
	}
}
