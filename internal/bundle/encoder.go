// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package bundle

import "sort"

// LabelEncoder maps categorical values onto ordinal codes. Classes are
// sorted at fit so identical training data always yields identical
// encodings. Unknown values at inference encode as 0 rather than
// failing the request.
type LabelEncoder struct {
	Classes []string
}

// FitEncoder collects the sorted distinct values.
func FitEncoder(values []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

// Transform returns the ordinal code for a value, 0 if unknown.
func (e *LabelEncoder) Transform(value string) float64 {
	for i, c := range e.Classes {
		if c == value {
			return float64(i)
		}
	}
	return 0
}
