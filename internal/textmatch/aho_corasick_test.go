// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package textmatch

import (
	"testing"
)

func buildTestMatcher() *Matcher {
	m := NewMatcher()
	m.Add("crypto", "bitcoin", "eth", "airdrop")
	m.Add("slang", "gm", "wagmi", "moon")
	m.Build()
	return m
}

func TestMatcherSearch(t *testing.T) {
	t.Parallel()

	m := buildTestMatcher()

	tests := []struct {
		name        string
		text        string
		wantMatches int
	}{
		{"empty text", "", 0},
		{"no matches", "hello world", 0},
		{"single match", "bitcoin is up", 1},
		{"case insensitive", "BITCOIN pumping", 1},
		{"multiple categories", "gm frens, bitcoin to the moon", 3},
		{"repeated keyword", "moon moon moon", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := m.Search(tt.text)
			if len(got) != tt.wantMatches {
				t.Errorf("Search(%q) returned %d matches, want %d", tt.text, len(got), tt.wantMatches)
			}
		})
	}
}

func TestMatcherSearchPositions(t *testing.T) {
	t.Parallel()

	m := buildTestMatcher()
	matches := m.Search("gm and wagmi")

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Keyword != "gm" || matches[0].Position != 0 {
		t.Errorf("first match = %+v, want gm at 0", matches[0])
	}
	if matches[1].Keyword != "wagmi" || matches[1].Position != 7 {
		t.Errorf("second match = %+v, want wagmi at 7", matches[1])
	}
}

func TestCountDistinct(t *testing.T) {
	t.Parallel()

	m := buildTestMatcher()

	tests := []struct {
		name string
		text string
		want map[string]int
	}{
		{
			name: "distinct per category",
			text: "gm gm gm bitcoin eth",
			want: map[string]int{"slang": 1, "crypto": 2},
		},
		{
			name: "no matches yields empty map",
			text: "nothing relevant here",
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := m.CountDistinct(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("CountDistinct(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for category, count := range tt.want {
				if got[category] != count {
					t.Errorf("category %q count = %d, want %d", category, got[category], count)
				}
			}
		})
	}
}

func TestSearchBeforeBuild(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	m.Add("crypto", "bitcoin")

	if got := m.Search("bitcoin"); got != nil {
		t.Errorf("expected nil matches before Build, got %v", got)
	}
}
