// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package features

import (
	"fmt"
	"math"
	"time"
)

// Record is one extraction pass over one content item. Records are
// immutable once persisted; reprocessing inserts a new record rather
// than mutating an existing one.
type Record struct {
	// ContentID is the source system's identifier, opaque to us.
	ContentID string `json:"content_id"`
	// Platform names the source platform, e.g. "cookie.fun".
	Platform string `json:"platform"`
	// ExtractedAt is when this extraction pass ran (UTC).
	ExtractedAt time.Time `json:"extracted_at"`
	// Numeric holds every feature in FeatureOrder, clamped and finite.
	Numeric map[string]float64 `json:"numeric"`
	// Categorical holds every field in CategoricalOrder.
	Categorical map[string]string `json:"categorical"`
	// LLMProvider records which provider produced the judgment scores,
	// or "default" when the default vector was substituted.
	LLMProvider string `json:"llm_provider"`
	// SchemaVersion is the feature schema this record conforms to.
	SchemaVersion int `json:"schema_version"`
}

// Vector assembles the numeric features in canonical order. Missing
// entries surface as the feature's lower bound.
func (r *Record) Vector() []float64 {
	vec := make([]float64, len(FeatureOrder))
	for i, name := range FeatureOrder {
		vec[i] = Clamp(name, r.Numeric[name])
	}
	return vec
}

// Validate checks that the record is schema-complete: every numeric
// feature present and finite, every categorical non-empty.
func (r *Record) Validate() error {
	if r.ContentID == "" {
		return fmt.Errorf("record missing content_id")
	}
	if r.Platform == "" {
		return fmt.Errorf("record missing platform")
	}
	for _, name := range FeatureOrder {
		v, ok := r.Numeric[name]
		if !ok {
			return fmt.Errorf("record missing numeric feature %q", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("numeric feature %q is not finite", name)
		}
	}
	for _, name := range CategoricalOrder {
		if r.Categorical[name] == "" {
			return fmt.Errorf("record missing categorical field %q", name)
		}
	}
	return nil
}
