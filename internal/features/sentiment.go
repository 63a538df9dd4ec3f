// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package features

import "strings"

// Sentiment lexicon tuned for attention-market posts. Scores are in
// [-1, 1]; magnitude reflects how loaded the term is in this register,
// not general English usage ("moon" is strongly positive here).
var sentimentLexicon = map[string]float64{
	// general positive
	"good": 0.5, "great": 0.7, "love": 0.8, "amazing": 0.8,
	"awesome": 0.8, "best": 0.7, "win": 0.6, "winning": 0.6,
	"huge": 0.5, "excited": 0.6, "happy": 0.6, "nice": 0.4,
	"strong": 0.4, "solid": 0.4, "insane": 0.5, "incredible": 0.7,

	// general negative
	"bad": -0.5, "terrible": -0.8, "hate": -0.8, "awful": -0.8,
	"worst": -0.7, "lose": -0.6, "losing": -0.6, "sad": -0.5,
	"angry": -0.6, "fear": -0.5, "weak": -0.4, "broken": -0.5,
	"dead": -0.6, "pain": -0.5, "wrong": -0.4,

	// domain positive
	"moon": 0.8, "mooning": 0.8, "bullish": 0.7, "pump": 0.6,
	"pumping": 0.6, "lfg": 0.7, "wagmi": 0.7, "gm": 0.3,
	"alpha": 0.5, "gains": 0.6, "ath": 0.6, "send": 0.4,

	// domain negative
	"dump": -0.6, "dumping": -0.6, "bearish": -0.7, "rug": -0.9,
	"rugged": -0.9, "scam": -0.9, "rekt": -0.8, "ngmi": -0.7,
	"fud": -0.5, "crash": -0.7, "bleed": -0.6, "exit": -0.3,
}

// subjectivityMarkers signal opinionated rather than factual language.
var subjectivityMarkers = map[string]struct{}{
	"think": {}, "believe": {}, "feel": {}, "probably": {}, "maybe": {},
	"imo": {}, "imho": {}, "honestly": {}, "definitely": {}, "obviously": {},
	"clearly": {}, "must": {}, "should": {}, "never": {}, "always": {},
	"guarantee": {}, "trust": {}, "sure": {}, "bet": {},
}

// sentimentFeatures scores polarity in [-1,1] and subjectivity in
// [0,1] from token-level lexicon hits. Tokens are lowercased and
// stripped of leading/trailing punctuation before lookup, so "Moon!"
// and "moon" score the same.
func sentimentFeatures(text string, out map[string]float64) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		out[FeatSentimentPolarity] = 0
		out[FeatSentimentSubjectivity] = 0
		return
	}

	var sum float64
	var hits, markers int
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:()\"'#@")
		if score, ok := sentimentLexicon[w]; ok {
			sum += score
			hits++
		}
		if _, ok := subjectivityMarkers[w]; ok {
			markers++
		}
	}

	polarity := 0.0
	if hits > 0 {
		polarity = sum / float64(hits)
	}
	out[FeatSentimentPolarity] = Clamp(FeatSentimentPolarity, polarity)

	// Lexicon hits count toward subjectivity too: loaded words make a
	// post opinionated even without explicit hedging.
	subjectivity := float64(hits+markers) / float64(len(words))
	out[FeatSentimentSubjectivity] = Clamp(FeatSentimentSubjectivity, subjectivity)
}
