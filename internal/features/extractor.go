// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package features

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postpulse/internal/judge"
	"github.com/tomtom215/postpulse/internal/metrics"
)

// ErrEmptyText is returned when there is nothing to extract from.
var ErrEmptyText = errors.New("features: content text is empty")

// ProviderDefault is the provenance tag recorded when the judgment
// default vector was substituted for a real provider response.
const ProviderDefault = "default"

// Input is one piece of content to extract features from.
type Input struct {
	ContentID string
	Platform  string
	Text      string
	// Context carries optional surrounding signal for the judge, such
	// as the campaign or thread the post belongs to.
	Context string
	// ObservedAt is when the content was observed. Zero means now.
	ObservedAt time.Time
}

// Extractor produces complete feature records. Local features are
// computed in-process; judgment scores come from the configured judge,
// which internally falls back and defaults so extraction never fails
// on provider trouble.
type Extractor struct {
	judge  *judge.Judge
	clock  func() time.Time
	logger zerolog.Logger
}

// NewExtractor wires an extractor. The judge may be nil, in which case
// every record carries the judgment default vector; that mode exists
// for offline replays and tests.
func NewExtractor(j *judge.Judge, logger zerolog.Logger) *Extractor {
	return &Extractor{
		judge:  j,
		clock:  time.Now,
		logger: logger.With().Str("component", "extractor").Logger(),
	}
}

// Extract runs one full extraction pass: local features, then exactly
// one judge call (with its internal fallback chain). The returned
// record is always schema-complete unless the text is empty.
func (e *Extractor) Extract(ctx context.Context, in Input) (*Record, error) {
	rec, _, _, err := e.ExtractJudged(ctx, in)
	return rec, err
}

// ExtractJudged is Extract plus the judgment and provider that went
// into the record. Ingest uses it to persist the raw judgment blob so
// ETL replays can re-derive records without new provider calls.
func (e *Extractor) ExtractJudged(ctx context.Context, in Input) (*Record, judge.Judgment, string, error) {
	start := e.clock()
	if in.Text == "" {
		metrics.ExtractionsTotal.WithLabelValues(in.Platform, "empty").Inc()
		return nil, judge.Judgment{}, "", ErrEmptyText
	}

	judgment := judge.Default()
	provider := ProviderDefault
	if e.judge != nil {
		res := e.judge.Score(ctx, judge.Request{
			ContentText: in.Text,
			Platform:    in.Platform,
			Context:     in.Context,
		})
		judgment = res.Judgment
		if !res.Defaulted {
			provider = res.Provider
		}
	}

	rec := e.Compose(in, judgment, provider)

	outcome := "success"
	if provider == ProviderDefault && e.judge != nil {
		outcome = "defaulted"
	}
	metrics.ExtractionsTotal.WithLabelValues(in.Platform, outcome).Inc()
	metrics.ExtractionDuration.Observe(e.clock().Sub(start).Seconds())

	e.logger.Debug().
		Str("content_id", in.ContentID).
		Str("platform", in.Platform).
		Str("provider", provider).
		Msg("features extracted")

	return rec, judgment, provider, nil
}

// Compose assembles a record from already-obtained judgment scores.
// ETL replays use this with stored judgments so local features are
// re-derived deterministically without new provider calls.
func (e *Extractor) Compose(in Input, j judge.Judgment, provider string) *Record {
	ts := in.ObservedAt
	if ts.IsZero() {
		ts = e.clock()
	}
	ts = ts.UTC()

	numeric := make(map[string]float64, len(FeatureOrder))
	lexicalFeatures(in.Text, numeric)
	sentimentFeatures(in.Text, numeric)
	keywordFeatures(in.Text, numeric)
	temporalFeatures(ts, numeric)
	applyJudgment(j, numeric)

	for name, v := range numeric {
		numeric[name] = Clamp(name, v)
	}

	return &Record{
		ContentID:   in.ContentID,
		Platform:    in.Platform,
		ExtractedAt: ts,
		Numeric:     numeric,
		Categorical: map[string]string{
			CatContentType:       j.ContentType,
			CatTargetAudience:    j.TargetAudience,
			CatTone:              j.Tone,
			CatPredictedReaction: j.PredictedReaction,
		},
		LLMProvider:   provider,
		SchemaVersion: SchemaVersion,
	}
}

// applyJudgment maps judgment scores onto their schema feature names.
func applyJudgment(j judge.Judgment, out map[string]float64) {
	out[FeatHumor] = j.Humor
	out[FeatOriginality] = j.Originality
	out[FeatViralityPotential] = j.ViralityPotential
	out[FeatMemeRelevance] = j.MemeRelevance
	out[FeatEmotionalImpact] = j.EmotionalImpact
	out[FeatControversy] = j.Controversy
	out[FeatFOMOFactor] = j.FOMOFactor
	out[FeatShillFactor] = j.ShillFactor
	out[FeatAlphaSignal] = j.AlphaSignal
	out[FeatCommunityFit] = j.CommunityFit
	out[FeatTimingRelevance] = j.TimingRelevance
	out[FeatClarity] = j.Clarity
	out[FeatHookStrength] = j.HookStrength
	out[FeatCallToAction] = j.CallToAction
	out[FeatAuthenticity] = j.Authenticity
}
