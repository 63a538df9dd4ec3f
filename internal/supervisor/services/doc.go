// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

/*
Package services provides suture.Service wrappers for PostPulse components.

This package adapts application components to the suture v4 supervision
model, translating their lifecycle patterns (Start/Stop, Run/Close,
ListenAndServe) into suture's context-aware Serve pattern.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

Start/Stop components (StartStopService):
  - Wraps anything with Start(ctx)/Stop() lifecycle
  - Used for the training scheduler

Run/Close components (RunnerService):
  - Wraps anything with a blocking Run(ctx) and Close()
  - Used for the ingest pipeline's message router

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer; suture uses it to identify the
service in log messages.
*/
package services
