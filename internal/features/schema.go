// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

// Package features turns raw post text plus context into the fixed,
// versioned feature schema consumed by training and prediction.
//
// The schema is append-only within a version: names, bounds, and the
// canonical ordering in FeatureOrder must not change without bumping
// SchemaVersion, because persisted model bundles record the version
// they were trained against and reject mismatches at load time.
package features

import "math"

// SchemaVersion identifies the feature schema. Bundles trained under a
// different version are rejected by the registry.
const SchemaVersion = 1

// Numeric feature names, grouped by origin. FeatureOrder concatenates
// these groups and is the canonical vector layout.
const (
	FeatCharCount             = "char_count"
	FeatWordCount             = "word_count"
	FeatSentenceCount         = "sentence_count"
	FeatAvgWordLength         = "avg_word_length"
	FeatSentimentPolarity     = "sentiment_polarity"
	FeatSentimentSubjectivity = "sentiment_subjectivity"
	FeatHashtagCount          = "hashtag_count"
	FeatMentionCount          = "mention_count"
	FeatURLCount              = "url_count"
	FeatEmojiCount            = "emoji_count"
	FeatQuestionCount         = "question_count"
	FeatExclamationCount      = "exclamation_count"
	FeatUppercaseRatio        = "uppercase_ratio"
	FeatCryptoKeywordCount    = "crypto_keyword_count"
	FeatTradingSlangCount     = "trading_slang_count"
	FeatTechJargonCount       = "tech_jargon_count"

	FeatHourOfDay   = "hour_of_day"
	FeatDayOfWeek   = "day_of_week"
	FeatIsWeekend   = "is_weekend"
	FeatIsPrimeTime = "is_prime_time"
)

// LLM judgment score names carry an llm_ prefix in the vector so the
// schema distinguishes them from locally computed features.
const (
	FeatHumor             = "llm_humor"
	FeatOriginality       = "llm_originality"
	FeatViralityPotential = "llm_virality_potential"
	FeatMemeRelevance     = "llm_meme_relevance"
	FeatEmotionalImpact   = "llm_emotional_impact"
	FeatControversy       = "llm_controversy"
	FeatFOMOFactor        = "llm_fomo_factor"
	FeatShillFactor       = "llm_shill_factor"
	FeatAlphaSignal       = "llm_alpha_signal"
	FeatCommunityFit      = "llm_community_fit"
	FeatTimingRelevance   = "llm_timing_relevance"
	FeatClarity           = "llm_clarity"
	FeatHookStrength      = "llm_hook_strength"
	FeatCallToAction      = "llm_call_to_action"
	FeatAuthenticity      = "llm_authenticity"
)

// Categorical field names.
const (
	CatContentType       = "content_type"
	CatTargetAudience    = "target_audience"
	CatTone              = "tone"
	CatPredictedReaction = "predicted_reaction"
)

// FeatureOrder is the canonical numeric feature ordering. Vectors handed
// to estimators are assembled in exactly this order.
var FeatureOrder = []string{
	FeatCharCount,
	FeatWordCount,
	FeatSentenceCount,
	FeatAvgWordLength,
	FeatSentimentPolarity,
	FeatSentimentSubjectivity,
	FeatHashtagCount,
	FeatMentionCount,
	FeatURLCount,
	FeatEmojiCount,
	FeatQuestionCount,
	FeatExclamationCount,
	FeatUppercaseRatio,
	FeatCryptoKeywordCount,
	FeatTradingSlangCount,
	FeatTechJargonCount,
	FeatHourOfDay,
	FeatDayOfWeek,
	FeatIsWeekend,
	FeatIsPrimeTime,
	FeatHumor,
	FeatOriginality,
	FeatViralityPotential,
	FeatMemeRelevance,
	FeatEmotionalImpact,
	FeatControversy,
	FeatFOMOFactor,
	FeatShillFactor,
	FeatAlphaSignal,
	FeatCommunityFit,
	FeatTimingRelevance,
	FeatClarity,
	FeatHookStrength,
	FeatCallToAction,
	FeatAuthenticity,
}

// CategoricalOrder is the canonical ordering of categorical fields.
var CategoricalOrder = []string{
	CatContentType,
	CatTargetAudience,
	CatTone,
	CatPredictedReaction,
}

// bound describes the valid closed interval for one numeric feature.
type bound struct {
	Min float64
	Max float64
}

// counting caps open-ended counts at the storage range of the
// DECIMAL(9,3) feature columns, so a pathological input (the API
// accepts bodies up to 1 MiB) can never push a count past what the
// column holds and fail the insert.
var counting = bound{Min: 0, Max: 999999.999}

// bounds is the single clamping table for every numeric feature. All
// raw values pass through Clamp before persistence or prediction.
var bounds = map[string]bound{
	FeatCharCount:             counting,
	FeatWordCount:             counting,
	FeatSentenceCount:         counting,
	FeatAvgWordLength:         counting,
	FeatSentimentPolarity:     {Min: -1, Max: 1},
	FeatSentimentSubjectivity: {Min: 0, Max: 1},
	FeatHashtagCount:          counting,
	FeatMentionCount:          counting,
	FeatURLCount:              counting,
	FeatEmojiCount:            counting,
	FeatQuestionCount:         counting,
	FeatExclamationCount:      counting,
	FeatUppercaseRatio:        {Min: 0, Max: 1},
	FeatCryptoKeywordCount:    counting,
	FeatTradingSlangCount:     counting,
	FeatTechJargonCount:       counting,
	FeatHourOfDay:             {Min: 0, Max: 23},
	FeatDayOfWeek:             {Min: 0, Max: 6},
	FeatIsWeekend:             {Min: 0, Max: 1},
	FeatIsPrimeTime:           {Min: 0, Max: 1},
	FeatHumor:                 {Min: 0, Max: 10},
	FeatOriginality:           {Min: 0, Max: 10},
	FeatViralityPotential:     {Min: 0, Max: 10},
	FeatMemeRelevance:         {Min: 0, Max: 10},
	FeatEmotionalImpact:       {Min: 0, Max: 10},
	FeatControversy:           {Min: 0, Max: 10},
	FeatFOMOFactor:            {Min: 0, Max: 10},
	FeatShillFactor:           {Min: 0, Max: 10},
	FeatAlphaSignal:           {Min: 0, Max: 10},
	FeatCommunityFit:          {Min: 0, Max: 10},
	FeatTimingRelevance:       {Min: 0, Max: 10},
	FeatClarity:               {Min: 0, Max: 10},
	FeatHookStrength:          {Min: 0, Max: 10},
	FeatCallToAction:          {Min: 0, Max: 10},
	FeatAuthenticity:          {Min: 0, Max: 10},
}

// Clamp forces v into the valid range for the named feature. NaN and
// infinities collapse to the lower bound so every persisted value is
// finite. Unknown names get the counting bound.
func Clamp(name string, v float64) float64 {
	b, ok := bounds[name]
	if !ok {
		b = counting
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return b.Min
	}
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}
