// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

// Package judge obtains qualitative content judgments from LLM providers.
//
// A judgment is a fixed set of bounded numeric scores and closed-vocabulary
// classifications for one piece of content. The package treats provider output
// as untrusted: every field is validated, defaulted on absence and normalized
// at the parse boundary, so downstream consumers never see a partial schema.
//
// Judgments are produced exactly once per content item during precomputation.
// Nothing on the serving path calls into this package.
package judge

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Score bounds for all numeric judgment fields.
const (
	ScoreMin = 0.0
	ScoreMax = 10.0

	// NeutralScore is the documented default applied when a provider fails
	// or omits a field.
	NeutralScore = 5.0
)

// Closed vocabularies for the categorical judgment fields.
var (
	ContentTypes       = []string{"meme", "analysis", "news", "shill", "question", "announcement", "other"}
	TargetAudiences    = []string{"traders", "holders", "newcomers", "degens", "general"}
	Tones              = []string{"bullish", "bearish", "neutral", "ironic", "hype"}
	PredictedReactions = []string{"viral", "strong", "moderate", "weak", "ignored"}
)

// Defaults for the categorical judgment fields.
const (
	DefaultContentType       = "other"
	DefaultTargetAudience    = "general"
	DefaultTone              = "neutral"
	DefaultPredictedReaction = "moderate"
)

// Judgment is the validated, schema-complete result of one LLM evaluation.
// All scores are within [ScoreMin, ScoreMax] and all categorical fields are
// drawn from their closed vocabulary.
type Judgment struct {
	Humor             float64 `json:"humor"`
	Originality       float64 `json:"originality"`
	ViralityPotential float64 `json:"virality_potential"`
	MemeRelevance     float64 `json:"meme_relevance"`
	EmotionalImpact   float64 `json:"emotional_impact"`
	Controversy       float64 `json:"controversy"`
	FOMOFactor        float64 `json:"fomo_factor"`
	ShillFactor       float64 `json:"shill_factor"`
	AlphaSignal       float64 `json:"alpha_signal"`
	CommunityFit      float64 `json:"community_fit"`
	TimingRelevance   float64 `json:"timing_relevance"`
	Clarity           float64 `json:"clarity"`
	HookStrength      float64 `json:"hook_strength"`
	CallToAction      float64 `json:"call_to_action"`
	Authenticity      float64 `json:"authenticity"`

	ContentType       string `json:"content_type"`
	TargetAudience    string `json:"target_audience"`
	Tone              string `json:"tone"`
	PredictedReaction string `json:"predicted_reaction"`
}

// scoreKeys lists the numeric judgment fields in schema order.
var scoreKeys = []string{
	"humor", "originality", "virality_potential", "meme_relevance",
	"emotional_impact", "controversy", "fomo_factor", "shill_factor",
	"alpha_signal", "community_fit", "timing_relevance", "clarity",
	"hook_strength", "call_to_action", "authenticity",
}

// Default returns the fixed neutral judgment used when providers are
// exhausted. Every score is NeutralScore and every categorical field is its
// documented default, so the feature schema is never partial.
func Default() Judgment {
	return Judgment{
		Humor:             NeutralScore,
		Originality:       NeutralScore,
		ViralityPotential: NeutralScore,
		MemeRelevance:     NeutralScore,
		EmotionalImpact:   NeutralScore,
		Controversy:       NeutralScore,
		FOMOFactor:        NeutralScore,
		ShillFactor:       NeutralScore,
		AlphaSignal:       NeutralScore,
		CommunityFit:      NeutralScore,
		TimingRelevance:   NeutralScore,
		Clarity:           NeutralScore,
		HookStrength:      NeutralScore,
		CallToAction:      NeutralScore,
		Authenticity:      NeutralScore,
		ContentType:       DefaultContentType,
		TargetAudience:    DefaultTargetAudience,
		Tone:              DefaultTone,
		PredictedReaction: DefaultPredictedReaction,
	}
}

// Scores returns the numeric fields keyed by schema name.
func (j *Judgment) Scores() map[string]float64 {
	return map[string]float64{
		"humor":              j.Humor,
		"originality":        j.Originality,
		"virality_potential": j.ViralityPotential,
		"meme_relevance":     j.MemeRelevance,
		"emotional_impact":   j.EmotionalImpact,
		"controversy":        j.Controversy,
		"fomo_factor":        j.FOMOFactor,
		"shill_factor":       j.ShillFactor,
		"alpha_signal":       j.AlphaSignal,
		"community_fit":      j.CommunityFit,
		"timing_relevance":   j.TimingRelevance,
		"clarity":            j.Clarity,
		"hook_strength":      j.HookStrength,
		"call_to_action":     j.CallToAction,
		"authenticity":       j.Authenticity,
	}
}

// Categoricals returns the classification fields keyed by schema name.
func (j *Judgment) Categoricals() map[string]string {
	return map[string]string{
		"content_type":       j.ContentType,
		"target_audience":    j.TargetAudience,
		"tone":               j.Tone,
		"predicted_reaction": j.PredictedReaction,
	}
}

// Parse decodes a raw provider response into a complete Judgment.
//
// Providers occasionally wrap JSON in markdown fences or emit values outside
// the documented ranges; Parse strips fences, clamps every score and replaces
// missing or out-of-vocabulary fields with their defaults. It returns an error
// only when the payload contains no JSON object at all - a structurally
// unparseable judgment must not be silently defaulted by callers that feed
// training data.
func Parse(raw []byte) (Judgment, error) {
	payload := extractJSONObject(raw)
	if payload == nil {
		return Judgment{}, fmt.Errorf("no JSON object in judgment payload")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return Judgment{}, fmt.Errorf("decode judgment: %w", err)
	}

	j := Judgment{}
	scores := make(map[string]float64, len(scoreKeys))
	for _, key := range scoreKeys {
		scores[key] = scoreField(fields, key)
	}
	j.Humor = scores["humor"]
	j.Originality = scores["originality"]
	j.ViralityPotential = scores["virality_potential"]
	j.MemeRelevance = scores["meme_relevance"]
	j.EmotionalImpact = scores["emotional_impact"]
	j.Controversy = scores["controversy"]
	j.FOMOFactor = scores["fomo_factor"]
	j.ShillFactor = scores["shill_factor"]
	j.AlphaSignal = scores["alpha_signal"]
	j.CommunityFit = scores["community_fit"]
	j.TimingRelevance = scores["timing_relevance"]
	j.Clarity = scores["clarity"]
	j.HookStrength = scores["hook_strength"]
	j.CallToAction = scores["call_to_action"]
	j.Authenticity = scores["authenticity"]

	j.ContentType = categoryField(fields, "content_type", ContentTypes, DefaultContentType)
	j.TargetAudience = categoryField(fields, "target_audience", TargetAudiences, DefaultTargetAudience)
	j.Tone = categoryField(fields, "tone", Tones, DefaultTone)
	j.PredictedReaction = categoryField(fields, "predicted_reaction", PredictedReactions, DefaultPredictedReaction)

	return j, nil
}

// scoreField extracts a numeric field, defaulting on absence and clamping to
// the score range.
func scoreField(fields map[string]json.RawMessage, key string) float64 {
	raw, ok := fields[key]
	if !ok {
		return NeutralScore
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		// Some providers quote numbers.
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return NeutralScore
		}
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &v); err != nil {
			return NeutralScore
		}
	}

	return clampScore(v)
}

// categoryField extracts a categorical field, defaulting on absence or
// out-of-vocabulary values.
func categoryField(fields map[string]json.RawMessage, key string, vocab []string, fallback string) string {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fallback
	}

	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range vocab {
		if s == v {
			return v
		}
	}
	return fallback
}

// clampScore bounds a score to [ScoreMin, ScoreMax]. NaN maps to the neutral
// default since it cannot be stored in fixed-precision columns.
func clampScore(v float64) float64 {
	if v != v { // NaN
		return NeutralScore
	}
	if v < ScoreMin {
		return ScoreMin
	}
	if v > ScoreMax {
		return ScoreMax
	}
	return v
}

// extractJSONObject locates the outermost JSON object in a provider response,
// tolerating markdown code fences and surrounding prose.
func extractJSONObject(raw []byte) []byte {
	s := string(raw)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil
	}
	return []byte(s[start : end+1])
}
