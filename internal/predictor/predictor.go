// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

/*
predictor.go - Real-time ensemble inference

Serves predictions from persisted feature records and loaded model
bundles only. The request path is a feature-record lookup, vector
assembly in the bundle's recorded order, one scaler transform, and one
pass through every estimator. It never calls an LLM provider and never
re-derives features.

The point estimate is the ensemble mean. The confidence band is the
mean plus/minus the standard deviation across member predictions,
floored at the target's valid range.
*/

package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/postpulse/internal/bundle"
	"github.com/tomtom215/postpulse/internal/database"
	"github.com/tomtom215/postpulse/internal/metrics"
	"github.com/tomtom215/postpulse/internal/registry"
)

// ErrNotFound is returned when an entity has no persisted feature
// record on the requested platform.
var ErrNotFound = errors.New("predictor: no feature record for entity")

// ErrModelUnavailable is returned when no bundle is loaded for the
// requested (platform, family).
var ErrModelUnavailable = registry.ErrModelUnavailable

// batchConcurrency bounds the fan-out of a batch prediction call.
const batchConcurrency = 8

// Heuristic split of total predicted engagement into per-type counts.
// The engagement family models the total; the per-type breakdown is a
// fixed-ratio estimate, not an independently trained target.
const (
	likeShare    = 0.7
	retweetShare = 0.2
	replyShare   = 0.1
)

// ConfidenceBand is a symmetric uncertainty band around the point
// estimate, after range flooring.
type ConfidenceBand struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// EngagementBreakdown is the heuristic per-type split of a predicted
// total engagement count.
type EngagementBreakdown struct {
	Likes    float64 `json:"likes"`
	Retweets float64 `json:"retweets"`
	Replies  float64 `json:"replies"`
}

// Prediction is the result of one single-entity inference.
type Prediction struct {
	EntityID string  `json:"entity_id"`
	Platform string  `json:"platform"`
	Family   string  `json:"family"`
	Value    float64 `json:"value"`

	Band ConfidenceBand `json:"confidence_band"`

	// Members holds each estimator's raw prediction, keyed by name.
	Members map[string]float64 `json:"members,omitempty"`

	// Engagement is set for the engagement family only.
	Engagement *EngagementBreakdown `json:"engagement,omitempty"`
}

// BatchResult partitions a batch call into per-entity successes and
// failures. One entity's error never fails the batch.
type BatchResult struct {
	Succeeded map[string]*Prediction `json:"succeeded"`
	Failed    map[string]string      `json:"failed"`
}

// Predictor runs ensemble inference against one database and registry.
type Predictor struct {
	db     *database.DB
	reg    *registry.Registry
	logger zerolog.Logger
}

// New creates a predictor.
func New(db *database.DB, reg *registry.Registry, logger zerolog.Logger) *Predictor {
	return &Predictor{
		db:     db,
		reg:    reg,
		logger: logger.With().Str("component", "predictor").Logger(),
	}
}

// Predict runs one single-entity prediction.
func (p *Predictor) Predict(ctx context.Context, platform, entityID, family string) (*Prediction, error) {
	start := time.Now()
	pred, err := p.predict(ctx, platform, entityID, family)

	outcome := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrModelUnavailable):
		outcome = "model_unavailable"
	case err != nil:
		outcome = "error"
	}
	metrics.PredictionsTotal.WithLabelValues(platform, family, outcome).Inc()
	if err == nil {
		metrics.PredictionDuration.WithLabelValues(platform, family).Observe(time.Since(start).Seconds())
	}
	return pred, err
}

func (p *Predictor) predict(ctx context.Context, platform, entityID, family string) (*Prediction, error) {
	b, err := p.reg.Bundle(platform, family)
	if err != nil {
		return nil, err
	}

	rec, err := p.db.GetLatestFeatureRecord(ctx, platform, entityID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s on %s", ErrNotFound, entityID, platform)
		}
		return nil, fmt.Errorf("feature lookup for %s: %w", entityID, err)
	}
	if rec.SchemaVersion != b.SchemaVersion {
		return nil, fmt.Errorf("feature record schema version %d does not match bundle version %d for %s",
			rec.SchemaVersion, b.SchemaVersion, entityID)
	}

	vec := b.Scaler.Transform(b.Assemble(rec.Vector(), rec.Categorical))

	members := make(map[string]float64, len(b.Estimators))
	var sum float64
	for name, est := range b.Estimators {
		v, err := est.Predict(vec)
		if err != nil {
			return nil, fmt.Errorf("estimator %s: %w", name, err)
		}
		members[name] = v
		sum += v
	}
	mean := sum / float64(len(members))

	var variance float64
	for _, v := range members {
		d := v - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(members)))

	pred := &Prediction{
		EntityID: entityID,
		Platform: platform,
		Family:   family,
		Members:  members,
	}
	p.aggregate(pred, b, mean, std)
	return pred, nil
}

// aggregate turns the raw ensemble mean and spread into the family's
// reported value and band.
func (p *Predictor) aggregate(pred *Prediction, b *bundle.Bundle, mean, std float64) {
	switch {
	case b.Classification():
		// Position predictions live in class-index space; decode the
		// point estimate and both band edges back to class labels.
		pred.Value = float64(b.DecodeClass(mean))
		pred.Band = ConfidenceBand{
			Low:  float64(b.DecodeClass(mean - std)),
			High: float64(b.DecodeClass(mean + std)),
		}

	case pred.Family == bundle.FamilyEngagement:
		// Counts are non-negative.
		value := math.Max(0, mean)
		pred.Value = value
		pred.Band = ConfidenceBand{
			Low:  math.Max(0, mean-std),
			High: math.Max(0, mean+std),
		}
		pred.Engagement = &EngagementBreakdown{
			Likes:    value * likeShare,
			Retweets: value * retweetShare,
			Replies:  value * replyShare,
		}

	default:
		pred.Value = mean
		pred.Band = ConfidenceBand{Low: mean - std, High: mean + std}
	}
}

// PredictBatch fans out single-entity predictions concurrently and
// partitions the results. The call succeeds even when every entity
// fails; per-entity errors land in Failed.
func (p *Predictor) PredictBatch(ctx context.Context, platform string, entityIDs []string, family string) *BatchResult {
	metrics.BatchPredictionSize.Observe(float64(len(entityIDs)))

	result := &BatchResult{
		Succeeded: make(map[string]*Prediction, len(entityIDs)),
		Failed:    make(map[string]string),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, id := range entityIDs {
		g.Go(func() error {
			pred, err := p.Predict(gctx, platform, id, family)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[id] = err.Error()
				return nil
			}
			result.Succeeded[id] = pred
			return nil
		})
	}
	// Goroutines never return errors; Wait only joins them.
	_ = g.Wait()
	return result
}
