// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package features

import (
	"strings"
	"unicode"
)

// lexicalFeatures computes the structural counters over the raw text.
// Everything here is deterministic and does no I/O, so ETL replays
// produce identical values for identical input.
func lexicalFeatures(text string, out map[string]float64) {
	runes := []rune(text)
	out[FeatCharCount] = float64(len(runes))

	words := strings.Fields(text)
	out[FeatWordCount] = float64(len(words))
	out[FeatSentenceCount] = float64(sentenceCount(runes))
	out[FeatAvgWordLength] = avgWordLength(words)

	var hashtags, mentions, urls int
	for _, w := range words {
		switch {
		case isHashtag(w):
			hashtags++
		case isMention(w):
			mentions++
		case isURL(w):
			urls++
		}
	}
	out[FeatHashtagCount] = float64(hashtags)
	out[FeatMentionCount] = float64(mentions)
	out[FeatURLCount] = float64(urls)

	var emoji, questions, exclamations, upper, letters int
	for _, r := range runes {
		switch {
		case isEmoji(r):
			emoji++
		case r == '?':
			questions++
		case r == '!':
			exclamations++
		}
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	out[FeatEmojiCount] = float64(emoji)
	out[FeatQuestionCount] = float64(questions)
	out[FeatExclamationCount] = float64(exclamations)
	if letters > 0 {
		out[FeatUppercaseRatio] = float64(upper) / float64(letters)
	} else {
		out[FeatUppercaseRatio] = 0
	}
}

// sentenceCount counts runs of terminal punctuation. "wen moon?!" is
// one sentence, not two. Text with words but no terminator counts as
// one sentence.
func sentenceCount(runes []rune) int {
	count := 0
	inTerminator := false
	sawContent := false
	for _, r := range runes {
		if r == '.' || r == '!' || r == '?' {
			if !inTerminator && sawContent {
				count++
			}
			inTerminator = true
			continue
		}
		inTerminator = false
		if !unicode.IsSpace(r) {
			sawContent = true
		}
	}
	// trailing content without a terminator
	if count == 0 && sawContent {
		return 1
	}
	return count
}

func avgWordLength(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len([]rune(w))
	}
	return float64(total) / float64(len(words))
}

func isHashtag(token string) bool {
	return len(token) > 1 && token[0] == '#'
}

func isMention(token string) bool {
	return len(token) > 1 && token[0] == '@'
}

func isURL(token string) bool {
	t := strings.ToLower(token)
	return strings.HasPrefix(t, "http://") ||
		strings.HasPrefix(t, "https://") ||
		strings.HasPrefix(t, "www.")
}

// isEmoji covers the blocks that dominate short-form social posts:
// emoticons, pictographs, transport, supplemental symbols, and the
// misc symbols / dingbats ranges.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // misc symbols and pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport and map
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental symbols
		return true
	case r >= 0x1FA70 && r <= 0x1FAFF: // symbols and pictographs extended
		return true
	case r >= 0x2600 && r <= 0x26FF: // misc symbols
		return true
	case r >= 0x2700 && r <= 0x27BF: // dingbats
		return true
	}
	return false
}
