// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

// Package textmatch provides multi-pattern keyword matching for feature extraction.
//
// The three fixed domain keyword sets (crypto vocabulary, trading slang,
// technical jargon) are compiled into a single Aho-Corasick automaton so a
// post's text is scanned once regardless of vocabulary size. Matching runs in
// O(n + m + z) time where n is the text length, m the total pattern length
// and z the number of matches.
package textmatch

import (
	"strings"
	"sync"
)

// Matcher finds occurrences of categorized keywords in text.
// Safe for concurrent use after Build.
type Matcher struct {
	mu       sync.RWMutex
	root     *node
	patterns []pattern
	built    bool
}

// pattern is a keyword with its category tag.
type pattern struct {
	text     string
	category string
}

// node is a node in the Aho-Corasick automaton.
type node struct {
	children map[rune]*node
	failure  *node
	output   []int
}

// Match is a single keyword occurrence in the scanned text.
type Match struct {
	// Keyword is the matched keyword.
	Keyword string

	// Category is the keyword set the match came from.
	Category string

	// Position is the byte offset of the match start.
	Position int
}

// NewMatcher creates an empty matcher. Matching is case-insensitive.
func NewMatcher() *Matcher {
	return &Matcher{root: newNode()}
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Add registers keywords under a category. Must be called before Build.
func (m *Matcher) Add(category string, keywords ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		m.patterns = append(m.patterns, pattern{text: strings.ToLower(kw), category: category})
	}
	m.built = false
}

// Build constructs the automaton. Must be called after Add and before Search.
func (m *Matcher) Build() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.built {
		return
	}

	m.root = newNode()
	for i, p := range m.patterns {
		m.insert(i, p.text)
	}
	m.buildFailureLinks()
	m.built = true
}

// insert adds one pattern to the trie.
func (m *Matcher) insert(index int, text string) {
	n := m.root
	for _, ch := range text {
		if n.children[ch] == nil {
			n.children[ch] = newNode()
		}
		n = n.children[ch]
	}
	n.output = append(n.output, index)
}

// buildFailureLinks builds failure links via BFS.
func (m *Matcher) buildFailureLinks() {
	queue := make([]*node, 0, len(m.root.children))
	for _, child := range m.root.children {
		child.failure = m.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}

			if fail == nil {
				child.failure = m.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}
}

// Search returns all keyword occurrences in text.
func (m *Matcher) Search(text string) []Match {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.built || len(m.patterns) == 0 {
		return nil
	}

	searchText := strings.ToLower(text)

	var matches []Match
	n := m.root
	for i, ch := range searchText {
		for n != nil && n.children[ch] == nil {
			n = n.failure
		}
		if n == nil {
			n = m.root
			continue
		}
		n = n.children[ch]

		for _, idx := range n.output {
			p := m.patterns[idx]
			matches = append(matches, Match{
				Keyword:  p.text,
				Category: p.category,
				Position: i - len(p.text) + 1,
			})
		}
	}

	return matches
}

// CountDistinct returns, per category, the number of distinct keywords from
// that category present in the text. A keyword appearing multiple times counts
// once; this mirrors how the feature schema defines keyword hit counts.
func (m *Matcher) CountDistinct(text string) map[string]int {
	matches := m.Search(text)

	seen := make(map[string]map[string]struct{})
	for _, match := range matches {
		if seen[match.Category] == nil {
			seen[match.Category] = make(map[string]struct{})
		}
		seen[match.Category][match.Keyword] = struct{}{}
	}

	counts := make(map[string]int, len(seen))
	for category, keywords := range seen {
		counts[category] = len(keywords)
	}
	return counts
}
