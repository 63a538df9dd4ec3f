// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package judge

import (
	"testing"
)

func TestParseCompletePayload(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"humor": 7.5, "originality": 6, "virality_potential": 8.2,
		"meme_relevance": 9, "emotional_impact": 5.5, "controversy": 2,
		"fomo_factor": 6.1, "shill_factor": 1, "alpha_signal": 4,
		"community_fit": 7, "timing_relevance": 5, "clarity": 8,
		"hook_strength": 7.7, "call_to_action": 3, "authenticity": 6.5,
		"content_type": "meme", "target_audience": "degens",
		"tone": "bullish", "predicted_reaction": "viral"
	}`)

	j, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if j.Humor != 7.5 {
		t.Errorf("Humor = %v, want 7.5", j.Humor)
	}
	if j.ViralityPotential != 8.2 {
		t.Errorf("ViralityPotential = %v, want 8.2", j.ViralityPotential)
	}
	if j.ContentType != "meme" {
		t.Errorf("ContentType = %q, want meme", j.ContentType)
	}
	if j.PredictedReaction != "viral" {
		t.Errorf("PredictedReaction = %q, want viral", j.PredictedReaction)
	}
}

func TestParseClampsOutOfRangeScores(t *testing.T) {
	t.Parallel()

	j, err := Parse([]byte(`{"humor": 42, "controversy": -3}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if j.Humor != ScoreMax {
		t.Errorf("Humor = %v, want clamped to %v", j.Humor, ScoreMax)
	}
	if j.Controversy != ScoreMin {
		t.Errorf("Controversy = %v, want clamped to %v", j.Controversy, ScoreMin)
	}
	// Absent fields default to the neutral score.
	if j.Clarity != NeutralScore {
		t.Errorf("Clarity = %v, want %v", j.Clarity, NeutralScore)
	}
}

func TestParseDefaultsCategoricalOutOfVocabulary(t *testing.T) {
	t.Parallel()

	j, err := Parse([]byte(`{"content_type": "dance_video", "tone": "BULLISH"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if j.ContentType != DefaultContentType {
		t.Errorf("ContentType = %q, want default %q", j.ContentType, DefaultContentType)
	}
	// Vocabulary matching is case-insensitive.
	if j.Tone != "bullish" {
		t.Errorf("Tone = %q, want bullish", j.Tone)
	}
}

func TestParseStripsMarkdownFences(t *testing.T) {
	t.Parallel()

	raw := []byte("Here is the analysis:\n```json\n{\"humor\": 3}\n```\n")
	j, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if j.Humor != 3 {
		t.Errorf("Humor = %v, want 3", j.Humor)
	}
}

func TestParseQuotedNumbers(t *testing.T) {
	t.Parallel()

	j, err := Parse([]byte(`{"humor": "6.5"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if j.Humor != 6.5 {
		t.Errorf("Humor = %v, want 6.5", j.Humor)
	}
}

func TestParseRejectsNonJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I cannot evaluate this content."},
		{"broken braces", "}{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.raw)); err == nil {
				t.Errorf("Parse(%q) expected error, got nil", tt.raw)
			}
		})
	}
}

func TestDefaultIsSchemaComplete(t *testing.T) {
	t.Parallel()

	d := Default()

	for name, score := range d.Scores() {
		if score != NeutralScore {
			t.Errorf("score %q = %v, want %v", name, score, NeutralScore)
		}
	}
	for name, val := range d.Categoricals() {
		if val == "" {
			t.Errorf("categorical %q is empty", name)
		}
	}
	if len(d.Scores()) != len(scoreKeys) {
		t.Errorf("Scores() has %d entries, want %d", len(d.Scores()), len(scoreKeys))
	}
}
