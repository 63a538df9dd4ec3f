// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package database

import "errors"

// ErrNotFound is returned when a keyed lookup matches no row.
var ErrNotFound = errors.New("database: record not found")
