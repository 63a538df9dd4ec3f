// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package features

import (
	"math"
	"testing"
	"time"
)

func TestLexicalFeatures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want map[string]float64
	}{
		{
			name: "social post with markup",
			text: "gm frens 🚀 #bullish @someone",
			want: map[string]float64{
				FeatHashtagCount:     1,
				FeatMentionCount:     1,
				FeatEmojiCount:       1,
				FeatExclamationCount: 0,
				FeatWordCount:        5,
			},
		},
		{
			name: "punctuation counts",
			text: "wen moon?? LFG!!!",
			want: map[string]float64{
				FeatQuestionCount:    2,
				FeatExclamationCount: 3,
				FeatSentenceCount:    2,
			},
		},
		{
			name: "urls",
			text: "read this https://example.com and www.example.org",
			want: map[string]float64{
				FeatURLCount: 2,
			},
		},
		{
			name: "empty",
			text: "",
			want: map[string]float64{
				FeatCharCount:      0,
				FeatWordCount:      0,
				FeatUppercaseRatio: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := make(map[string]float64)
			lexicalFeatures(tt.text, out)
			for name, want := range tt.want {
				if got := out[name]; got != want {
					t.Errorf("%s = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestUppercaseRatio(t *testing.T) {
	t.Parallel()

	out := make(map[string]float64)
	lexicalFeatures("ABcd", out)
	if got := out[FeatUppercaseRatio]; got != 0.5 {
		t.Errorf("uppercase_ratio = %v, want 0.5", got)
	}
}

func TestSentenceCountUnterminatedText(t *testing.T) {
	t.Parallel()

	out := make(map[string]float64)
	lexicalFeatures("no terminator here", out)
	if got := out[FeatSentenceCount]; got != 1 {
		t.Errorf("sentence_count = %v, want 1", got)
	}
}

func TestSentimentFeatures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		wantPolarity func(float64) bool
	}{
		{"bullish post", "bullish on this, to the moon", func(v float64) bool { return v > 0 }},
		{"bearish post", "total scam, everyone got rekt", func(v float64) bool { return v < 0 }},
		{"neutral post", "the protocol shipped an update", func(v float64) bool { return v == 0 }},
		{"empty", "", func(v float64) bool { return v == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := make(map[string]float64)
			sentimentFeatures(tt.text, out)
			pol := out[FeatSentimentPolarity]
			if !tt.wantPolarity(pol) {
				t.Errorf("polarity = %v, unexpected sign", pol)
			}
			if pol < -1 || pol > 1 || math.IsNaN(pol) {
				t.Errorf("polarity = %v, out of [-1,1]", pol)
			}
			sub := out[FeatSentimentSubjectivity]
			if sub < 0 || sub > 1 {
				t.Errorf("subjectivity = %v, out of [0,1]", sub)
			}
		})
	}
}

func TestSentimentStripsPunctuation(t *testing.T) {
	t.Parallel()

	bare := make(map[string]float64)
	sentimentFeatures("moon", bare)
	punct := make(map[string]float64)
	sentimentFeatures("Moon!", punct)

	if bare[FeatSentimentPolarity] != punct[FeatSentimentPolarity] {
		t.Errorf("polarity differs: bare %v vs punctuated %v",
			bare[FeatSentimentPolarity], punct[FeatSentimentPolarity])
	}
}

func TestKeywordFeatures(t *testing.T) {
	t.Parallel()

	out := make(map[string]float64)
	keywordFeatures("hodl your btc, the blockchain never sleeps, hodl", out)

	// hodl repeats but counts once
	if got := out[FeatTradingSlangCount]; got != 1 {
		t.Errorf("trading_slang_count = %v, want 1", got)
	}
	if got := out[FeatCryptoKeywordCount]; got != 1 {
		t.Errorf("crypto_keyword_count = %v, want 1", got)
	}
	if got := out[FeatTechJargonCount]; got != 1 {
		t.Errorf("tech_jargon_count = %v, want 1", got)
	}
}

func TestTemporalFeatures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		ts            time.Time
		wantHour      float64
		wantWeekend   float64
		wantPrimeTime float64
	}{
		{
			name:          "weekday prime time",
			ts:            time.Date(2026, 3, 4, 19, 30, 0, 0, time.UTC), // Wednesday
			wantHour:      19,
			wantWeekend:   0,
			wantPrimeTime: 1,
		},
		{
			name:          "saturday off hours",
			ts:            time.Date(2026, 3, 7, 3, 0, 0, 0, time.UTC), // Saturday
			wantHour:      3,
			wantWeekend:   1,
			wantPrimeTime: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := make(map[string]float64)
			temporalFeatures(tt.ts, out)
			if out[FeatHourOfDay] != tt.wantHour {
				t.Errorf("hour_of_day = %v, want %v", out[FeatHourOfDay], tt.wantHour)
			}
			if out[FeatIsWeekend] != tt.wantWeekend {
				t.Errorf("is_weekend = %v, want %v", out[FeatIsWeekend], tt.wantWeekend)
			}
			if out[FeatIsPrimeTime] != tt.wantPrimeTime {
				t.Errorf("is_prime_time = %v, want %v", out[FeatIsPrimeTime], tt.wantPrimeTime)
			}
		})
	}
}
