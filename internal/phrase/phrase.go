// Package phrase finds verbatim word sequences shared by a submission and a
// reference document.
//
// Matching works on the raw-text path (normalize.Words): lower-cased,
// whitespace-split, stopwords and punctuation kept. Every window of the
// submission between MinWords and MaxWords words is tested as a substring of
// the lower-cased reference. The cost is quadratic in the submission length,
// so callers only run it for references already flagged by similarity.
package phrase

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/chriscorrea/copycheck/internal/normalize"
)

// Default matching limits.
const (
	DefaultMinWords   = 5
	DefaultMaxWords   = 15
	DefaultMaxResults = 3
)

// Match is one shared phrase and its length in words.
type Match struct {
	Phrase string `json:"phrase"`
	Length int    `json:"length"`
}

// Options bounds the search. Zero values fall back to the defaults.
type Options struct {
	MinWords   int
	MaxWords   int
	MaxResults int
}

func (o Options) withDefaults() Options {
	if o.MinWords <= 0 {
		o.MinWords = DefaultMinWords
	}
	if o.MaxWords <= 0 {
		o.MaxWords = DefaultMaxWords
	}
	if o.MaxWords < o.MinWords {
		o.MaxWords = o.MinWords
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	return o
}

// FindMatches returns at most opts.MaxResults phrases of the submission that
// occur verbatim (case-insensitively) in the reference, longest first.
// Overlapping and duplicate phrases are not collapsed; among equal lengths
// the earlier submission position comes first.
func FindMatches(submitted, reference string, opts Options) []Match {
	opts = opts.withDefaults()

	words := normalize.Words(submitted)
	haystack := strings.ToLower(reference)
	if len(words) < opts.MinWords || strings.TrimSpace(haystack) == "" {
		return []Match{}
	}

	var matches []Match
	for i := 0; i+opts.MinWords <= len(words); i++ {
		maxLen := min(opts.MaxWords, len(words)-i)
		for length := opts.MinWords; length <= maxLen; length++ {
			candidate := strings.Join(words[i:i+length], " ")
			if !strings.Contains(haystack, candidate) {
				// any longer window starting at i has this one as a prefix
				break
			}
			matches = append(matches, Match{Phrase: candidate, Length: length})
		}
	}

	// longest verbatim overlaps are the strongest evidence
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Length > matches[b].Length
	})

	slog.Debug("Phrase matching completed", "submittedWords", len(words), "matches", len(matches))

	if len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}
	if matches == nil {
		return []Match{}
	}
	return matches
}
