package detect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/chriscorrea/copycheck/internal/phrase"
)

type span struct{ start, end int }

// Highlight wraps every occurrence of the matched phrases in text with open
// and close markers. Matching is case-insensitive against the original text
// and accepts any whitespace run between words, so phrases found through the
// lower-cased word path still line up with line breaks in the source.
// Longer phrases win where occurrences overlap.
func Highlight(text string, matches []phrase.Match, open, close string) string {
	if text == "" || len(matches) == 0 {
		return text
	}

	ordered := make([]phrase.Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Length > ordered[j].Length
	})

	var chosen []span
	seen := make(map[string]struct{}, len(ordered))
	for _, m := range ordered {
		if _, dup := seen[m.Phrase]; dup {
			continue
		}
		seen[m.Phrase] = struct{}{}

		pattern := phrasePattern(m.Phrase)
		if pattern == nil {
			continue
		}
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			candidate := span{loc[0], loc[1]}
			if !overlapsAny(candidate, chosen) {
				chosen = append(chosen, candidate)
			}
		}
	}

	if len(chosen) == 0 {
		return text
	}
	sort.Slice(chosen, func(i, j int) bool { return chosen[i].start < chosen[j].start })

	var sb strings.Builder
	last := 0
	for _, s := range chosen {
		sb.WriteString(text[last:s.start])
		sb.WriteString(open)
		sb.WriteString(text[s.start:s.end])
		sb.WriteString(close)
		last = s.end
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func phrasePattern(p string) *regexp.Regexp {
	words := strings.Fields(p)
	if len(words) == 0 {
		return nil
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(words, `\s+`))
}

func overlapsAny(s span, spans []span) bool {
	for _, other := range spans {
		if s.start < other.end && other.start < s.end {
			return true
		}
	}
	return false
}
